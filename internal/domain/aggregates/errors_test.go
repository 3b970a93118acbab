package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("row locked")
	cases := []struct {
		err  error
		want string
	}{
		{NewError(CodeRetryable, "Milestones.Progress.RecordBlock", "lock timeout", cause), "Milestones.Progress.RecordBlock: lock timeout (retryable)"},
		{NewError(CodeNotFound, "Milestones.Progress.RecordBlock", "", nil), "Milestones.Progress.RecordBlock (not_found)"},
		{NewError(CodeCourseFinished, "", "course has finished", nil), "course has finished (course_finished)"},
		{NewError(CodeInternal, " ", " ", nil), "internal"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Error())
	}
}

func TestCodeMatching(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := fmt.Errorf("track: %w", Wrap(CodeRetryable, "Milestones.Progress.RecordBlock", cause))

	assert.True(t, IsCode(err, CodeRetryable))
	assert.False(t, IsCode(err, CodeConflict))
	assert.False(t, IsCode(cause, ""))
	assert.Equal(t, CodeRetryable, CodeOf(err))
	assert.ErrorIs(t, err, ErrRetryable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrCourseFinished)
	assert.Nil(t, Wrap(CodeInternal, "op", nil))
}

func TestTransientCodes(t *testing.T) {
	assert.True(t, CodeRetryable.Transient())
	assert.True(t, CodeConflict.Transient())
	assert.False(t, CodeCourseFinished.Transient())
	assert.False(t, CodeValidation.Transient())
}
