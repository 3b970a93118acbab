package jobs

import (
	"strings"

	"github.com/google/uuid"
)

const (
	TypeTrackMilestoneProgress                = "track_milestone_progress"
	TypeRemoveAssessmentFromMilestoneProgress = "remove_assessment_from_milestone_progress"
	TypeRescoreAssessmentMilestoneProgress    = "rescore_assessment_milestone_progress"
)

// MilestoneTaskTypes lists every job type the milestone worker handles.
var MilestoneTaskTypes = []string{
	TypeTrackMilestoneProgress,
	TypeRemoveAssessmentFromMilestoneProgress,
	TypeRescoreAssessmentMilestoneProgress,
}

// TrackPayload is the input of a track_milestone_progress job.
type TrackPayload struct {
	CourseID       uuid.UUID  `json:"course_id"`
	StudentID      uuid.UUID  `json:"student_id"`
	BlockID        uuid.UUID  `json:"block_id"`
	SubmissionID   *uuid.UUID `json:"submission_id,omitempty"`
	PreviousStatus string     `json:"previous_status,omitempty"`
}

// MaintenancePayload is the input of the remove and rescore jobs.
type MaintenancePayload struct {
	CourseID     uuid.UUID  `json:"course_id"`
	StudentID    *uuid.UUID `json:"student_id,omitempty"`
	AssessmentID *uuid.UUID `json:"assessment_id,omitempty"`
}

// DedupeKey is course_id:user_id:assessment_id with empty segments for
// absent filters.
func (p MaintenancePayload) DedupeKey() string {
	parts := []string{p.CourseID.String(), "", ""}
	if p.StudentID != nil {
		parts[1] = p.StudentID.String()
	}
	if p.AssessmentID != nil {
		parts[2] = p.AssessmentID.String()
	}
	return strings.Join(parts, ":")
}
