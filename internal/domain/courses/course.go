package courses

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Slug               string     `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Title              string     `gorm:"column:title;not null" json:"title"`
	StartDate          *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate            *time.Time `gorm:"column:end_date;index" json:"end_date,omitempty"`
	EnableCertificates bool       `gorm:"column:enable_certificates;not null;default:false" json:"enable_certificates"`
	EnableBadges       bool       `gorm:"column:enable_badges;not null;default:false" json:"enable_badges"`
	BadgeClassSlug     string     `gorm:"column:badge_class_slug" json:"badge_class_slug,omitempty"`
	CreatedAt          time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// HasFinished reports whether the course end date has passed.
// Milestone progress is frozen once this is true.
func (c *Course) HasFinished(now time.Time) bool {
	if c == nil || c.EndDate == nil {
		return false
	}
	return now.After(*c.EndDate)
}
