package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akshith-07/fitflow-pro/internal/api"
	"github.com/akshith-07/fitflow-pro/internal/scheduler"
)

// @Summary      List scheduled jobs
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string][]string
// @Router       /admin/jobs [get]
func ListJobs(runner *scheduler.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"jobs": runner.JobNames()})
	}
}

// @Summary      Trigger a scheduled job now
// @Description  Runs the named job outside its schedule. All jobs are idempotent.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        name path string true "Job name"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/jobs/{name}/run [post]
func RunJob(runner *scheduler.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		records, err := runner.RunJob(c.Request.Context(), name)
		if err != nil {
			if errors.Is(err, scheduler.ErrUnknownJob) {
				c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"job": name, "records": records})
	}
}
