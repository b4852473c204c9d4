package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"webPageProbeGO/internal/errs"
	"webPageProbeGO/internal/export"
	"webPageProbeGO/internal/middleware"
	"webPageProbeGO/internal/models"
	"webPageProbeGO/internal/repository"
)

// errInvalidTaskID is what pollers see for unknown or evicted ids
var errInvalidTaskID = errors.New("invalid task id")

// analyzeHandler registers a batch and answers before any sample is taken
func (s *Server) analyzeHandler(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	job, err := s.orchestrator.Submit(c.Request.Context(), req)
	if err != nil {
		if errs.Is(err, errs.MalformedInput) {
			respondError(c, http.StatusBadRequest, "Invalid request", err)
			return
		}
		s.logger.Error("Failed to submit batch", "request_id", middleware.GetRequestID(c), "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to start analysis", err)
		return
	}

	s.logger.Info("Analysis started", "request_id", middleware.GetRequestID(c), "task_id", job.ID, "samples", job.Total)
	c.JSON(http.StatusAccepted, gin.H{"task_id": job.ID})
}

// progressHandler returns the current snapshot of a task
func (s *Server) progressHandler(c *gin.Context) {
	task, err := s.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found", errInvalidTaskID)
			return
		}
		s.logger.Error("Failed to get task", "task_id", c.Param("id"), "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to get task", err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// exportHandler downloads a task's samples as a CSV or XLSX table
func (s *Server) exportHandler(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid export format", err)
		return
	}

	task, err := s.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found", errInvalidTaskID)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to get task", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, task.Result); err != nil {
		s.logger.Error("Failed to export task", "task_id", task.ID, "format", format, "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to export results", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="results-%s.%s"`, task.ID, format))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
