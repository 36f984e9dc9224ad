package handlers

import (
	"net/http"

	"billledger/internal/common"
	"billledger/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobRunner is the view of the scheduler the job endpoints need
type JobRunner interface {
	GetJobStatus() []background.JobStatus
	RunNow(name string) error
}

type JobHandlers struct {
	scheduler JobRunner
}

func NewJobHandlers(scheduler JobRunner) *JobHandlers {
	return &JobHandlers{scheduler: scheduler}
}

// ListJobs handles GET /jobs
func (h *JobHandlers) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"jobs": h.scheduler.GetJobStatus(),
	})
}

// RunJob handles POST /jobs/:name/run. The job runs asynchronously.
func (h *JobHandlers) RunJob(c echo.Context) error {
	name := c.Param("name")
	known := false
	for _, s := range h.scheduler.GetJobStatus() {
		if s.Name == name {
			known = true
			break
		}
	}
	if !known {
		return common.SendNotFoundError(c, "job "+name)
	}
	if err := h.scheduler.RunNow(name); err != nil {
		return common.SendServerError(c, "failed to trigger job")
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}
