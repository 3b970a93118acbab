package badges

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

func TestIssueAssertion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/badge-classes/intro-statistics/assertions", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "student@example.test", body["recipient_email"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"assert-1","url":"https://badges.example.test/a/1","issued_on":"2026-01-02T03:04:05Z"}`))
	}))
	defer srv.Close()

	c, err := New(logger.NewNop(), Config{BaseURL: srv.URL, APIToken: "tok"})
	require.NoError(t, err)

	got, err := c.IssueAssertion(context.Background(), AssertionRequest{
		BadgeClassSlug: "intro-statistics",
		RecipientEmail: "student@example.test",
		CourseSlug:     "py-101",
	})
	require.NoError(t, err)
	assert.Equal(t, "assert-1", got.ID)
	assert.Equal(t, 2026, got.IssuedOn.Year())
}

func TestIssueAssertionRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"assert-2","issued_on":"2026-01-02T03:04:05Z"}`))
	}))
	defer srv.Close()

	c, err := New(logger.NewNop(), Config{BaseURL: srv.URL, RetryCount: 2})
	require.NoError(t, err)

	got, err := c.IssueAssertion(context.Background(), AssertionRequest{BadgeClassSlug: "b", RecipientEmail: "s@example.test"})
	require.NoError(t, err)
	assert.Equal(t, "assert-2", got.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIssueAssertionClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"unknown badge class"}`))
	}))
	defer srv.Close()

	c, err := New(logger.NewNop(), Config{BaseURL: srv.URL, RetryCount: 3})
	require.NoError(t, err)

	_, err = c.IssueAssertion(context.Background(), AssertionRequest{BadgeClassSlug: "missing", RecipientEmail: "s@example.test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown badge class")
}

func TestIssueAssertionValidates(t *testing.T) {
	c, err := New(logger.NewNop(), Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	_, err = c.IssueAssertion(context.Background(), AssertionRequest{RecipientEmail: "s@example.test"})
	require.Error(t, err)
	_, err = c.IssueAssertion(context.Background(), AssertionRequest{BadgeClassSlug: "b"})
	require.Error(t, err)

	_, err = New(logger.NewNop(), Config{})
	require.Error(t, err)
}
