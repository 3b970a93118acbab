package milestonetasks

import (
	"fmt"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/jobs/runtime"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

// Register adds the track, remove and rescore handlers to reg.
func Register(reg *runtime.Registry, monitor services.MilestoneMonitor, maintenance services.MilestoneMaintenance) error {
	if err := reg.Register(
		NewTrackHandler(monitor),
		NewRemoveHandler(maintenance),
		NewRescoreHandler(maintenance),
	); err != nil {
		return err
	}
	return reg.Require(
		domainjobs.TypeTrackMilestoneProgress,
		domainjobs.TypeRemoveAssessmentFromMilestoneProgress,
		domainjobs.TypeRescoreAssessmentMilestoneProgress,
	)
}

// Classify marks errors that a retry cannot fix as permanent.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation, domainagg.CodeCourseFinished, domainagg.CodeNotFound, domainagg.CodeInvariantViolation:
		return runtime.Permanent(err)
	}
	return err
}

type TrackHandler struct {
	monitor services.MilestoneMonitor
}

func NewTrackHandler(monitor services.MilestoneMonitor) *TrackHandler {
	return &TrackHandler{monitor: monitor}
}

func (h *TrackHandler) Type() string { return domainjobs.TypeTrackMilestoneProgress }

func (h *TrackHandler) Run(jc *runtime.Context) error {
	var p domainjobs.TrackPayload
	if err := jc.DecodePayload(&p); err != nil {
		return err
	}
	if p.CourseID == uuid.Nil || p.StudentID == uuid.Nil || p.BlockID == uuid.Nil {
		return runtime.Permanent(fmt.Errorf("track payload requires course_id, student_id and block_id"))
	}
	res := h.monitor.TrackInteractionByID(jc.Ctx, p.CourseID, p.StudentID, p.BlockID, services.TrackOptions{
		SubmissionID:   p.SubmissionID,
		PreviousStatus: p.PreviousStatus,
	})
	if res.Err != nil {
		return Classify(res.Err)
	}
	jc.Succeed(string(res.Outcome), map[string]any{
		"achieved":      res.Achieved,
		"outcome":       res.Outcome,
		"credited":      res.Credited,
		"course_passed": res.CoursePassed,
	})
	return nil
}

type maintenanceFunc func(h *MaintenanceHandler, jc *runtime.Context, p domainjobs.MaintenancePayload) (int, error)

// MaintenanceHandler runs remove or rescore for a MaintenancePayload.
type MaintenanceHandler struct {
	jobType     string
	maintenance services.MilestoneMaintenance
	op          maintenanceFunc
}

func NewRemoveHandler(maintenance services.MilestoneMaintenance) *MaintenanceHandler {
	return &MaintenanceHandler{
		jobType:     domainjobs.TypeRemoveAssessmentFromMilestoneProgress,
		maintenance: maintenance,
		op: func(h *MaintenanceHandler, jc *runtime.Context, p domainjobs.MaintenancePayload) (int, error) {
			return h.maintenance.RemoveAssessmentFromProgressByID(jc.Ctx, p.CourseID, p.StudentID, p.AssessmentID)
		},
	}
}

func NewRescoreHandler(maintenance services.MilestoneMaintenance) *MaintenanceHandler {
	return &MaintenanceHandler{
		jobType:     domainjobs.TypeRescoreAssessmentMilestoneProgress,
		maintenance: maintenance,
		op: func(h *MaintenanceHandler, jc *runtime.Context, p domainjobs.MaintenancePayload) (int, error) {
			return h.maintenance.RescoreAssessmentProgressByID(jc.Ctx, p.CourseID, p.StudentID, p.AssessmentID)
		},
	}
}

func (h *MaintenanceHandler) Type() string { return h.jobType }

func (h *MaintenanceHandler) Run(jc *runtime.Context) error {
	var p domainjobs.MaintenancePayload
	if err := jc.DecodePayload(&p); err != nil {
		return err
	}
	if p.CourseID == uuid.Nil {
		return runtime.Permanent(fmt.Errorf("%s payload requires course_id", h.jobType))
	}
	n, err := h.op(h, jc, p)
	if err != nil {
		return Classify(err)
	}
	jc.Succeed("done", map[string]any{"rows": n})
	return nil
}
