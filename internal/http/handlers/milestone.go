package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/http/response"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

type MilestoneHandler struct {
	log      *logger.Logger
	progress services.ProgressService
	jobs     services.JobService
}

func NewMilestoneHandler(log *logger.Logger, progress services.ProgressService, jobs services.JobService) *MilestoneHandler {
	return &MilestoneHandler{log: log.With("handler", "MilestoneHandler"), progress: progress, jobs: jobs}
}

type trackInteractionRequest struct {
	StudentID      uuid.UUID  `json:"student_id" binding:"required"`
	BlockID        uuid.UUID  `json:"block_id" binding:"required"`
	SubmissionID   *uuid.UUID `json:"submission_id"`
	PreviousStatus string     `json:"previous_status" binding:"omitempty,oneof=UNANSWERED INCOMPLETE COMPLETE CORRECT INCORRECT DRAFT"`
}

type maintenanceRequest struct {
	StudentID    *uuid.UUID `json:"student_id"`
	AssessmentID *uuid.UUID `json:"assessment_id"`
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/courses/:course_id/students/:student_id/milestone-progress
func (h *MilestoneHandler) GetProgress(c *gin.Context) {
	courseID, ok := uuidParam(c, "course_id")
	if !ok {
		return
	}
	studentID, ok := uuidParam(c, "student_id")
	if !ok {
		return
	}
	out, err := h.progress.GetCourseProgress(c.Request.Context(), courseID, studentID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if out == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("course or student not found"))
		return
	}
	response.RespondOK(c, gin.H{"progress": out})
}

// POST /api/courses/:course_id/interactions
func (h *MilestoneHandler) TrackInteraction(c *gin.Context) {
	courseID, ok := uuidParam(c, "course_id")
	if !ok {
		return
	}
	var req trackInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.StudentID == uuid.Nil || req.BlockID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("student_id and block_id are required"))
		return
	}
	job, err := h.jobs.EnqueueTrack(dbctx.Context{Ctx: c.Request.Context()}, domainjobs.TrackPayload{
		CourseID:       courseID,
		StudentID:      req.StudentID,
		BlockID:        req.BlockID,
		SubmissionID:   req.SubmissionID,
		PreviousStatus: req.PreviousStatus,
	})
	if err != nil {
		h.log.Warn("Enqueue track interaction failed", "course_id", courseID, "block_id", req.BlockID, "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"job": job})
}

// POST /api/courses/:course_id/milestone-progress/remove
func (h *MilestoneHandler) RemoveAssessment(c *gin.Context) {
	h.maintenance(c, h.jobs.EnqueueRemove)
}

// POST /api/courses/:course_id/milestone-progress/rescore
func (h *MilestoneHandler) RescoreAssessment(c *gin.Context) {
	h.maintenance(c, h.jobs.EnqueueRescore)
}

type enqueueMaintenance func(dbctx.Context, domainjobs.MaintenancePayload) (*domainjobs.JobRun, bool, error)

func (h *MilestoneHandler) maintenance(c *gin.Context, enqueue enqueueMaintenance) {
	courseID, ok := uuidParam(c, "course_id")
	if !ok {
		return
	}
	var req maintenanceRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	job, created, err := enqueue(dbctx.Context{Ctx: c.Request.Context()}, domainjobs.MaintenancePayload{
		CourseID:     courseID,
		StudentID:    req.StudentID,
		AssessmentID: req.AssessmentID,
	})
	if err != nil {
		h.log.Warn("Enqueue milestone maintenance failed", "course_id", courseID, "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"job": job, "created": created})
}
