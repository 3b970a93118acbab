package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-milestones/internal/platform/apierr"
	"github.com/yungbote/neurobridge-milestones/internal/platform/ctxutil"
)

// retryAfterSeconds is advertised on 503s caused by lock contention.
const retryAfterSeconds = "1"

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func envelope(c *gin.Context, code, message string) ErrorEnvelope {
	out := ErrorEnvelope{Error: APIError{Message: message, Code: code}}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		out.Error.RequestID = td.RequestID
	}
	return out
}

// RespondError writes a client error with err's message as-is.
func RespondError(c *gin.Context, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, envelope(c, code, msg))
}

// RespondAPIError maps err through apierr and records it on the context for
// the request logger.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		c.Status(http.StatusNoContent)
		return
	}
	_ = c.Error(err)
	if ae.Status == http.StatusServiceUnavailable {
		c.Header("Retry-After", retryAfterSeconds)
	}
	c.AbortWithStatusJSON(ae.Status, envelope(c, ae.Code, ae.Public()))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondAccepted(c *gin.Context, payload any) {
	c.JSON(http.StatusAccepted, payload)
}
