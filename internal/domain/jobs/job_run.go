package jobs

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusFailed    = "failed"
	StatusDead      = "dead"
	StatusSucceeded = "succeeded"
	StatusCanceled  = "canceled"
)

// Runnable statuses will still execute; a dead job's retry yields to them.
var RunnableStatuses = []string{StatusQueued, StatusRunning, StatusFailed}

// Pending statuses have not started their next attempt. A new enqueue with the
// same dedupe key joins a pending job but never a running one, whose work may
// already be partly done.
var PendingStatuses = []string{StatusQueued, StatusFailed}

// Terminal statuses are never claimed again.
var TerminalStatuses = []string{StatusSucceeded, StatusDead, StatusCanceled}

type JobRun struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	JobType     string         `gorm:"column:job_type;not null;index" json:"job_type"`
	EntityType  string         `gorm:"column:entity_type;index" json:"entity_type,omitempty"`
	EntityID    *uuid.UUID     `gorm:"type:uuid;column:entity_id;index" json:"entity_id,omitempty"`
	DedupeKey   string         `gorm:"column:dedupe_key;index" json:"dedupe_key,omitempty"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	Stage       string         `gorm:"column:stage;not null" json:"stage"`
	Progress    int            `gorm:"column:progress;not null;default:0" json:"progress"`
	Attempts    int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	MaxAttempts int            `gorm:"column:max_attempts;not null" json:"max_attempts"`
	NextRunAt   *time.Time     `gorm:"column:next_run_at;index" json:"next_run_at,omitempty"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	LockedAt    *time.Time     `gorm:"column:locked_at" json:"locked_at,omitempty"`
	HeartbeatAt *time.Time     `gorm:"column:heartbeat_at;index" json:"heartbeat_at,omitempty"`
	LastErrorAt *time.Time     `gorm:"column:last_error_at" json:"last_error_at,omitempty"`
	FinishedAt  *time.Time     `gorm:"column:finished_at;index" json:"finished_at,omitempty"`
	Payload     datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	Result      datatypes.JSON `gorm:"column:result;type:jsonb" json:"result"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (JobRun) TableName() string { return "job_run" }

func (j *JobRun) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// RetriesExhausted reports whether another failure would exceed MaxAttempts.
func (j *JobRun) RetriesExhausted() bool {
	if j == nil {
		return true
	}
	return j.MaxAttempts > 0 && j.Attempts >= j.MaxAttempts
}

func (j *JobRun) IsTerminal() bool {
	return j != nil && slices.Contains(TerminalStatuses, j.Status)
}
