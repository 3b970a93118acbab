package milestones

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/domain/courses"
)

type Type string

const (
	TypeVideoPlays                       Type = "VIDEO_PLAYS"
	TypeForumPosts                       Type = "FORUM_POSTS"
	TypeCorrectAnswers                   Type = "CORRECT_ANSWERS"
	TypeSimpleInteractiveToolInteraction Type = "SIMPLE_INTERACTIVE_TOOL_INTERACTIONS"
)

// TypeForBlock maps a block type onto the milestone category that counts it.
// ok is false for blocks that no milestone tracks.
func TypeForBlock(bt courses.BlockType) (Type, bool) {
	switch bt {
	case courses.BlockTypeVideo:
		return TypeVideoPlays, true
	case courses.BlockTypeForumTopic:
		return TypeForumPosts, true
	case courses.BlockTypeAssessment:
		return TypeCorrectAnswers, true
	case courses.BlockTypeSimpleInteractiveTool:
		return TypeSimpleInteractiveToolInteraction, true
	default:
		return "", false
	}
}

type Milestone struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID            uuid.UUID `gorm:"type:uuid;column:course_id;not null;index:idx_milestone_course_type,priority:1" json:"course_id"`
	Name                string    `gorm:"column:name;not null" json:"name"`
	Type                Type      `gorm:"column:type;not null;index:idx_milestone_course_type,priority:2" json:"type"`
	CountRequirement    int       `gorm:"column:count_requirement;not null" json:"count_requirement"`
	MinScoreRequirement int       `gorm:"column:min_score_requirement;not null" json:"min_score_requirement"`
	CountGradedOnly     bool      `gorm:"column:count_graded_only;not null;default:false" json:"count_graded_only"`
	RequiredToPass      bool      `gorm:"column:required_to_pass;not null;default:false;index" json:"required_to_pass"`
	CreatedAt           time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (Milestone) TableName() string { return "milestone" }

func (m *Milestone) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Satisfied reports whether count and total meet both requirements.
// A requirement of zero is always met.
func (m *Milestone) Satisfied(count, totalScore int) bool {
	if m == nil {
		return false
	}
	return count >= m.CountRequirement && totalScore >= m.MinScoreRequirement
}
