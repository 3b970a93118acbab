package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/platform/ctxutil"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{RequestID: "req-7"}))
		h(c)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	var env ErrorEnvelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestRespondAPIError(t *testing.T) {
	rec, env := serve(t, func(c *gin.Context) {
		RespondAPIError(c, domainagg.NewError(domainagg.CodeRetryable, "op", "row locked", nil))
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "retryable", env.Error.Code)
	assert.Equal(t, "req-7", env.Error.RequestID)

	rec, env = serve(t, func(c *gin.Context) { RespondAPIError(c, errors.New("dial tcp 10.0.0.3:5432")) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", env.Error.Message)
	assert.Empty(t, rec.Header().Get("Retry-After"))

	rec, _ = serve(t, func(c *gin.Context) { RespondAPIError(c, nil) })
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRespondError(t *testing.T) {
	rec, env := serve(t, func(c *gin.Context) {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", errors.New("invalid UUID length: 4"))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_course_id", env.Error.Code)
	assert.Equal(t, "invalid UUID length: 4", env.Error.Message)

	_, env = serve(t, func(c *gin.Context) { RespondError(c, http.StatusNotFound, "not_found", nil) })
	assert.Equal(t, "Not Found", env.Error.Message)
}
