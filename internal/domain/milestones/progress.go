package milestones

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MilestoneProgress is the per-student ledger for one milestone.
// Count always equals the number of credited blocks and TotalScore their summed
// scores. Achieved never reverts once set.
type MilestoneProgress struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID  `gorm:"type:uuid;column:course_id;not null;uniqueIndex:idx_progress_course_milestone_student,priority:1" json:"course_id"`
	MilestoneID uuid.UUID  `gorm:"type:uuid;column:milestone_id;not null;uniqueIndex:idx_progress_course_milestone_student,priority:2;index" json:"milestone_id"`
	StudentID   uuid.UUID  `gorm:"type:uuid;column:student_id;not null;uniqueIndex:idx_progress_course_milestone_student,priority:3;index" json:"student_id"`
	Count       int        `gorm:"column:count;not null;default:0" json:"count"`
	TotalScore  int        `gorm:"column:total_score;not null;default:0" json:"total_score"`
	Achieved    bool       `gorm:"column:achieved;not null;default:false;index" json:"achieved"`
	AchievedAt  *time.Time `gorm:"column:achieved_at" json:"achieved_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`

	Milestone *Milestone               `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
	Blocks    []MilestoneProgressBlock `gorm:"foreignKey:MilestoneProgressID" json:"blocks,omitempty"`
}

func (MilestoneProgress) TableName() string { return "milestone_progress" }

func (p *MilestoneProgress) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Credit applies a newly credited block and reports whether the milestone
// became achieved by this call.
func (p *MilestoneProgress) Credit(m *Milestone, score int, now time.Time) bool {
	p.Count++
	p.TotalScore += score
	return p.evaluate(m, now)
}

// Recompute replaces the running totals and reports whether the milestone
// became achieved by this call.
func (p *MilestoneProgress) Recompute(m *Milestone, count, totalScore int, now time.Time) bool {
	p.Count = count
	p.TotalScore = totalScore
	return p.evaluate(m, now)
}

func (p *MilestoneProgress) evaluate(m *Milestone, now time.Time) bool {
	if p.Achieved || !m.Satisfied(p.Count, p.TotalScore) {
		return false
	}
	p.Achieved = true
	at := now.UTC()
	p.AchievedAt = &at
	return true
}

// MilestoneProgressBlock records one credited block and the score it contributed.
type MilestoneProgressBlock struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MilestoneProgressID uuid.UUID `gorm:"type:uuid;column:milestone_progress_id;not null;uniqueIndex:idx_progress_block,priority:1" json:"milestone_progress_id"`
	BlockID             uuid.UUID `gorm:"type:uuid;column:block_id;not null;uniqueIndex:idx_progress_block,priority:2;index" json:"block_id"`
	Score               int       `gorm:"column:score;not null;default:0" json:"score"`
	CreatedAt           time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (MilestoneProgressBlock) TableName() string { return "milestone_progress_block" }

func (b *MilestoneProgressBlock) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
