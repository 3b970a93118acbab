package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
)

func TestMapErrorCodes(t *testing.T) {
	cases := map[string]struct {
		err  error
		want domainagg.ErrorCode
	}{
		"validation":         {ValidationError("bad input"), domainagg.CodeValidation},
		"conflict":           {ConflictError("stale"), domainagg.CodeConflict},
		"invariant":          {InvariantError("milestone does not belong to course"), domainagg.CodeInvariantViolation},
		"course finished":    {CourseFinishedError("course ended"), domainagg.CodeCourseFinished},
		"record not found":   {gorm.ErrRecordNotFound, domainagg.CodeNotFound},
		"deadline":           {context.DeadlineExceeded, domainagg.CodeRetryable},
		"pg unique":          {fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), domainagg.CodeConflict},
		"pg foreign key":     {&pgconn.PgError{Code: "23503"}, domainagg.CodePreconditionFailed},
		"pg serialization":   {&pgconn.PgError{Code: "40001"}, domainagg.CodeRetryable},
		"pg deadlock":        {&pgconn.PgError{Code: "40P01"}, domainagg.CodeRetryable},
		"pg lock":            {&pgconn.PgError{Code: "55P03"}, domainagg.CodeRetryable},
		"sqlite locked":      {errors.New("database is locked"), domainagg.CodeRetryable},
		"sqlite unique":      {errors.New("UNIQUE constraint failed: course_passed.course_id"), domainagg.CodeConflict},
		"unclassified":       {errors.New("boom"), domainagg.CodeInternal},
		"unknown pg code":    {&pgconn.PgError{Code: "22001", Message: "value too long"}, domainagg.CodeInternal},
		"wrapped tagged err": {fmt.Errorf("score: %w", RetryableError("lock")), domainagg.CodeRetryable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, domainagg.CodeOf(MapError("Milestones.Progress.Rescore", tc.err)))
		})
	}
	assert.NoError(t, MapError("op", nil))
}

func TestMapErrorStampsOp(t *testing.T) {
	err := MapError("Milestones.Progress.RecordBlock", CourseFinishedError("course intro-go has finished"))
	var aggErr *domainagg.Error
	assert.ErrorAs(t, err, &aggErr)
	assert.Equal(t, "Milestones.Progress.RecordBlock", aggErr.Op)
	assert.ErrorIs(t, err, domainagg.ErrCourseFinished)

	in := domainagg.NewError(domainagg.CodeRetryable, "inner", "retry", errors.New("boom"))
	assert.Same(t, in, MapError("outer", in))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(RetryableError("x")))
	assert.True(t, IsTransient(MapError("op", ConflictError("x"))))
	assert.False(t, IsTransient(ValidationError("x")))
	assert.False(t, IsTransient(nil))
}
