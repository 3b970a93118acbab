package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var CoursePassedAggregateContract = Contract{
	Name:       "Milestones.CoursePassed",
	Tables:     []string{"course_passed"},
	Invariants: []string{"at most one course_passed row per course and student"},
}

// CoursePassedAggregate owns the course-passed transition.
type CoursePassedAggregate interface {
	Aggregate

	// AwardIfPassed creates the course_passed row when every required milestone
	// is achieved. Awarded is true only for the call that created the row.
	AwardIfPassed(ctx context.Context, in AwardIfPassedInput) (AwardIfPassedResult, error)
}

type AwardIfPassedInput struct {
	CourseID  uuid.UUID
	StudentID uuid.UUID
	PassedAt  time.Time
}

// AwardIfPassedResult.PassedAt is the timestamp stored on the course_passed
// row; it is zero when the student has not passed.
type AwardIfPassedResult struct {
	Awarded        bool
	AlreadyPassed  bool
	CoursePassedID uuid.UUID
	PassedAt       time.Time
	RequiredCount  int
	AchievedCount  int
}
