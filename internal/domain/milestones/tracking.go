package milestones

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventMilestoneProgressed = "kinesinlms.course.progress.milestone.progressed"
	EventMilestoneCompleted  = "kinesinlms.course.progress.milestone.completed"
	EventCoursePassed        = "kinesinlms.course.passed"
	EventBadgeEarned         = "kinesinlms.course.badge.earned"
)

// TrackingEvent is an append-only record of a learner-facing progress event.
type TrackingEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EventType  string         `gorm:"column:event_type;not null;index" json:"event_type"`
	CourseID   uuid.UUID      `gorm:"type:uuid;column:course_id;not null;index" json:"course_id"`
	StudentID  uuid.UUID      `gorm:"type:uuid;column:student_id;not null;index" json:"student_id"`
	Payload    datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`
	OccurredAt time.Time      `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (TrackingEvent) TableName() string { return "tracking_event" }

func (e *TrackingEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
