package courses

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BlockType string

const (
	BlockTypeVideo                 BlockType = "VIDEO"
	BlockTypeForumTopic            BlockType = "FORUM_TOPIC"
	BlockTypeAssessment            BlockType = "ASSESSMENT"
	BlockTypeSimpleInteractiveTool BlockType = "SIMPLE_INTERACTIVE_TOOL"
	BlockTypeHTMLContent           BlockType = "HTML_CONTENT"
	BlockTypeCallout               BlockType = "CALLOUT"
)

type Block struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;column:course_id;not null;index" json:"course_id"`
	Type      BlockType `gorm:"column:type;not null;index" json:"type"`
	Slug      string    `gorm:"column:slug" json:"slug,omitempty"`
	Title     string    `gorm:"column:title" json:"title,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Block) TableName() string { return "block" }

func (b *Block) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
