package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
)

// Tagged errors carry no op; MapError stamps the op of the write they
// escaped from.

func ValidationError(msg string) error {
	return domainagg.NewError(domainagg.CodeValidation, "", msg, nil)
}

func InvariantError(msg string) error {
	return domainagg.NewError(domainagg.CodeInvariantViolation, "", msg, nil)
}

func ConflictError(msg string) error {
	return domainagg.NewError(domainagg.CodeConflict, "", msg, nil)
}

func RetryableError(msg string) error {
	return domainagg.NewError(domainagg.CodeRetryable, "", msg, nil)
}

// CourseFinishedError refuses a progress mutation after the course end date.
func CourseFinishedError(msg string) error {
	return domainagg.NewError(domainagg.CodeCourseFinished, "", msg, nil)
}

var pgCodes = map[string]domainagg.ErrorCode{
	"23505": domainagg.CodeConflict,           // unique_violation
	"23503": domainagg.CodePreconditionFailed, // foreign_key_violation
	"40001": domainagg.CodeRetryable,          // serialization_failure
	"40P01": domainagg.CodeRetryable,          // deadlock_detected
	"55P03": domainagg.CodeRetryable,          // lock_not_available
}

// Driver messages for backends without typed errors, sqlite mostly.
var messageCodes = []struct {
	fragment string
	code     domainagg.ErrorCode
}{
	{"duplicate key", domainagg.CodeConflict},
	{"already exists", domainagg.CodeConflict},
	{"unique constraint failed", domainagg.CodeConflict},
	{"deadlock", domainagg.CodeRetryable},
	{"serialization", domainagg.CodeRetryable},
	{"database is locked", domainagg.CodeRetryable},
	{"timeout", domainagg.CodeRetryable},
	{"temporar", domainagg.CodeRetryable},
}

// MapError classifies err under op. Errors that already carry a code keep it.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var tagged *domainagg.Error
	if errors.As(err, &tagged) {
		if tagged.Op != "" || err != error(tagged) {
			return err
		}
		out := *tagged
		out.Op = strings.TrimSpace(op)
		return &out
	}
	return domainagg.Wrap(classify(err), op, err)
}

func classify(err error) domainagg.ErrorCode {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.CodeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.CodeRetryable
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if code, ok := pgCodes[strings.TrimSpace(pgErr.Code)]; ok {
			return code
		}
	}
	msg := strings.ToLower(err.Error())
	for _, m := range messageCodes {
		if strings.Contains(msg, m.fragment) {
			return m.code
		}
	}
	return domainagg.CodeInternal
}
