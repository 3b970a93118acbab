package courses

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ToolSubmissionStatus string

const (
	ToolSubmissionDraft    ToolSubmissionStatus = "DRAFT"
	ToolSubmissionComplete ToolSubmissionStatus = "COMPLETE"
)

func (s ToolSubmissionStatus) Finished() bool {
	return s == ToolSubmissionComplete
}

// SimpleInteractiveTool is a graded interactive block that is not an assessment (diagram, table).
type SimpleInteractiveTool struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BlockID   uuid.UUID `gorm:"type:uuid;column:block_id;not null;uniqueIndex" json:"block_id"`
	Graded    bool      `gorm:"column:graded;not null;default:false" json:"graded"`
	MaxScore  int       `gorm:"column:max_score;not null" json:"max_score"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SimpleInteractiveTool) TableName() string { return "simple_interactive_tool" }

func (s *SimpleInteractiveTool) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type SimpleInteractiveToolSubmission struct {
	ID                      uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID                uuid.UUID            `gorm:"type:uuid;column:course_id;not null;index" json:"course_id"`
	StudentID               uuid.UUID            `gorm:"type:uuid;column:student_id;not null;index" json:"student_id"`
	SimpleInteractiveToolID uuid.UUID            `gorm:"type:uuid;column:simple_interactive_tool_id;not null;index" json:"simple_interactive_tool_id"`
	Status                  ToolSubmissionStatus `gorm:"column:status;not null" json:"status"`
	Score                   int                  `gorm:"column:score;not null;default:0" json:"score"`
	CreatedAt               time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time            `gorm:"not null" json:"updated_at"`

	Tool *SimpleInteractiveTool `gorm:"foreignKey:SimpleInteractiveToolID" json:"tool,omitempty"`
}

func (SimpleInteractiveToolSubmission) TableName() string { return "simple_interactive_tool_submission" }

func (s *SimpleInteractiveToolSubmission) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
