package sendgrid

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

func TestSendPostsMailPayload(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		w.Header().Set("X-Message-Id", "msg-123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, err := New(logger.NewNop(), Config{
		APIKey:           "SG.test",
		BaseURL:          srv.URL,
		DefaultFromEmail: "courses@example.test",
		DefaultFromName:  "Courses",
	})
	require.NoError(t, err)

	res, err := c.Send(context.Background(), SendEmailRequest{
		To:         []EmailAddress{{Email: "student@example.test", Name: "Student"}},
		Subject:    "Congratulations",
		Text:       "You passed.",
		Categories: []string{"course_passed"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "msg-123", res.MessageID)
	assert.Equal(t, "Bearer SG.test", auth)

	from, _ := got["from"].(map[string]any)
	assert.Equal(t, "courses@example.test", from["email"])
	ps, _ := got["personalizations"].([]any)
	require.Len(t, ps, 1)
	p := ps[0].(map[string]any)
	to := p["to"].([]any)[0].(map[string]any)
	assert.Equal(t, "student@example.test", to["email"])
	assert.Equal(t, "Congratulations", p["subject"])
}

func TestSendSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"invalid from address","field":"from"}]}`))
	}))
	defer srv.Close()

	c, err := New(logger.NewNop(), Config{APIKey: "k", BaseURL: srv.URL, DefaultFromEmail: "a@example.test"})
	require.NoError(t, err)

	_, err = c.Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "b@example.test"}},
		Subject: "s",
		HTML:    "<p>x</p>",
	})
	var herr *HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, http.StatusBadRequest, herr.HTTPStatusCode())
	assert.Contains(t, herr.Error(), "invalid from address")
}

func TestSendValidatesRequest(t *testing.T) {
	c, err := New(logger.NewNop(), Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  SendEmailRequest
	}{
		{"missing from", SendEmailRequest{To: []EmailAddress{{Email: "x@example.test"}}, Subject: "s", Text: "t"}},
		{"missing to", SendEmailRequest{From: EmailAddress{Email: "a@example.test"}, Subject: "s", Text: "t"}},
		{"missing subject", SendEmailRequest{From: EmailAddress{Email: "a@example.test"}, To: []EmailAddress{{Email: "x@example.test"}}, Text: "t"}},
		{"missing content", SendEmailRequest{From: EmailAddress{Email: "a@example.test"}, To: []EmailAddress{{Email: "x@example.test"}}, Subject: "s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Send(context.Background(), tc.req)
			require.Error(t, err)
		})
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(logger.NewNop(), Config{})
	require.Error(t, err)
	assert.False(t, Config{APIKey: "k"}.Enabled())
	assert.True(t, Config{APIKey: "k", DefaultFromEmail: "a@example.test"}.Enabled())
}
