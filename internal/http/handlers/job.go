package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-milestones/internal/http/response"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

// JobHandler exposes the job_run rows behind accepted tracking and
// maintenance requests so callers can poll them.
type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	job, err := h.jobs.GetByID(dbctx.Context{Ctx: c.Request.Context()}, jobID)
	switch {
	case err != nil:
		response.RespondAPIError(c, err)
	case job == nil:
		response.RespondError(c, http.StatusNotFound, "job_not_found", fmt.Errorf("job %s not found", jobID))
	default:
		response.RespondOK(c, gin.H{"job": job})
	}
}

// POST /api/jobs/:id/retry
func (h *JobHandler) RetryJob(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	job, err := h.jobs.Retry(dbctx.Context{Ctx: c.Request.Context()}, jobID)
	switch {
	case err != nil:
		response.RespondAPIError(c, err)
	case job == nil:
		response.RespondError(c, http.StatusNotFound, "job_not_found", fmt.Errorf("job %s not found", jobID))
	default:
		response.RespondAccepted(c, gin.H{"job": job})
	}
}

func jobIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return uuid.Nil, false
	}
	return id, true
}
