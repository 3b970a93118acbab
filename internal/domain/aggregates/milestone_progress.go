package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var MilestoneProgressAggregateContract = Contract{
	Name:   "Milestones.Progress",
	Tables: []string{"milestone_progress", "milestone_progress_block"},
	Invariants: []string{
		"count equals the number of credited blocks",
		"total_score equals the sum of credited block scores",
		"achieved never reverts to false",
		"a block is credited at most once per progress row",
	},
}

// MilestoneProgressAggregate owns the per-student milestone ledger.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeCourseFinished, CodeConflict, CodeRetryable, CodeInternal.
type MilestoneProgressAggregate interface {
	Aggregate

	// RecordBlock gets or creates the progress row under a row lock and credits
	// the block once. Achieved rows are left untouched.
	RecordBlock(ctx context.Context, in RecordBlockInput) (RecordBlockResult, error)

	// RemoveBlock withdraws one block from every matching row in one transaction.
	RemoveBlock(ctx context.Context, in RemoveBlockInput) (RemoveBlockResult, error)

	// DeleteProgress removes the matching rows and their credited blocks.
	DeleteProgress(ctx context.Context, in DeleteProgressInput) (DeleteProgressResult, error)

	// Rescore re-derives one row's credited scores from the student's live answers.
	Rescore(ctx context.Context, in RescoreInput) (RescoreResult, error)
}

type RecordBlockInput struct {
	CourseID    uuid.UUID
	MilestoneID uuid.UUID
	StudentID   uuid.UUID
	BlockID     uuid.UUID
	Score       int
	RecordedAt  time.Time
}

type RecordBlockResult struct {
	ProgressID      uuid.UUID
	Count           int
	TotalScore      int
	Credited        bool
	AlreadyAchieved bool
	JustAchieved    bool
}

// ProgressScope selects progress rows of one milestone type in a course.
type ProgressScope struct {
	CourseID      uuid.UUID
	StudentID     *uuid.UUID
	MilestoneType string
}

type RemoveBlockInput struct {
	Scope   ProgressScope
	BlockID uuid.UUID
}

type RemoveBlockResult struct {
	RowsUpdated int
}

type DeleteProgressInput struct {
	Scope ProgressScope
}

type DeleteProgressResult struct {
	RowsDeleted int
}

type RescoreInput struct {
	ProgressID uuid.UUID
	// BlockID limits regrading to answers on this block. Nil regrades all of
	// the student's answers in the course.
	BlockID    *uuid.UUID
	RescoredAt time.Time
}

// RescoreResult.Achieved is the row state after the rescore.
type RescoreResult struct {
	ProgressID     uuid.UUID
	MilestoneID    uuid.UUID
	StudentID      uuid.UUID
	RequiredToPass bool
	Count          int
	TotalScore     int
	Changed        bool
	Achieved       bool
	JustAchieved   bool
}
