package milestones

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CoursePassed is written once per (course, student) and never modified.
type CoursePassed struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;column:course_id;not null;uniqueIndex:idx_course_passed_course_student,priority:1" json:"course_id"`
	StudentID uuid.UUID `gorm:"type:uuid;column:student_id;not null;uniqueIndex:idx_course_passed_course_student,priority:2;index" json:"student_id"`
	PassedAt  time.Time `gorm:"column:passed_at;not null" json:"passed_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CoursePassed) TableName() string { return "course_passed" }

func (c *CoursePassed) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Certificate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;column:course_id;not null;uniqueIndex:idx_certificate_course_student,priority:1" json:"course_id"`
	StudentID uuid.UUID `gorm:"type:uuid;column:student_id;not null;uniqueIndex:idx_certificate_course_student,priority:2;index" json:"student_id"`
	IssuedAt  time.Time `gorm:"column:issued_at;not null" json:"issued_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Certificate) TableName() string { return "certificate" }

func (c *Certificate) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
