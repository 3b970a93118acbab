package logger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionPolicy(t *testing.T) {
	p := redactionPolicy{enabled: true, salt: "s"}
	student := uuid.MustParse("8b0e2f0e-3a55-4b6b-9f55-0d7f8d7f7f10")
	out := p.apply([]interface{}{
		"student_id", student,
		"email", "learner@example.com",
		"course_id", "c-1",
		"payload", map[string]interface{}{"sendgrid_api_key": "SG.x", "block_id": "b-1"},
		"dangling",
	})
	require.Len(t, out, 9)
	assert.Equal(t, p.hash(student.String()), out[1])
	assert.Regexp(t, `^hash:[0-9a-f]{12}$`, out[1])
	assert.Equal(t, "[REDACTED]", out[3])
	assert.Equal(t, "c-1", out[5])
	assert.Equal(t, map[string]interface{}{"sendgrid_api_key": "[REDACTED]", "block_id": "b-1"}, out[7])
	assert.Equal(t, "dangling", out[8])

	assert.NotEqual(t, p.hash("x"), redactionPolicy{enabled: true}.hash("x"), "salt changes the hash")
	assert.Equal(t, []interface{}{"email", "a@b.c"}, redactionPolicy{}.apply([]interface{}{"email", "a@b.c"}))
	assert.Equal(t, "[REDACTED]", p.value("previous_student_email", "x"))
	assert.Equal(t, p.hash("u"), p.value("awarded_student_id", "u"))
}

func TestObservedLoggerCapturesFields(t *testing.T) {
	log, logs := NewObserved()
	log.With("service", "MilestoneMonitor").Info("Milestone achieved", "count", 2)
	entries := logs.FilterMessage("Milestone achieved").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "MilestoneMonitor", entries[0].ContextMap()["service"])
	assert.EqualValues(t, 2, entries[0].ContextMap()["count"])
}
