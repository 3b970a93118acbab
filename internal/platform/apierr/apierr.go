package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
)

// Error carries the HTTP status and machine code a handler should answer with.
type Error struct {
	Status int
	Code   string
	Err    error
}

var statusByCode = map[domainagg.ErrorCode]int{
	domainagg.CodeValidation:         http.StatusBadRequest,
	domainagg.CodeNotFound:           http.StatusNotFound,
	domainagg.CodeConflict:           http.StatusConflict,
	domainagg.CodeCourseFinished:     http.StatusConflict,
	domainagg.CodePreconditionFailed: http.StatusUnprocessableEntity,
	domainagg.CodeInvariantViolation: http.StatusUnprocessableEntity,
	domainagg.CodeRetryable:          http.StatusServiceUnavailable,
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Public is the message safe to show a client; server faults hide their cause.
func (e *Error) Public() string {
	if e.Status >= http.StatusInternalServerError {
		return http.StatusText(e.Status)
	}
	if e.Err == nil {
		return http.StatusText(e.Status)
	}
	return e.Err.Error()
}

// Temporary reports whether the same request may succeed if sent again.
func (e *Error) Temporary() bool {
	return e.Status == http.StatusServiceUnavailable || e.Code == string(domainagg.CodeConflict)
}

// From converts any error into an API error, keeping one already in the chain
// and otherwise mapping the aggregate code.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	code := domainagg.CodeOf(err)
	if status, ok := statusByCode[code]; ok {
		return New(status, string(code), err)
	}
	return New(http.StatusInternalServerError, string(domainagg.CodeInternal), err)
}
