package realtime

import "time"

type Event string

const (
	EventMilestoneProgressed Event = "milestone_progressed"
	EventMilestoneCompleted  Event = "milestone_completed"
	EventCoursePassed        Event = "course_passed"
	EventJobDead             Event = "job_dead"
)

// Message is one notification fanned out to a channel, usually a student id.
type Message struct {
	Channel string         `json:"channel"`
	Event   Event          `json:"event"`
	Data    map[string]any `json:"data,omitempty"`
	SentAt  time.Time      `json:"sent_at"`
}
