package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cutreel/api/internal/model"
	"github.com/cutreel/api/internal/service"
	"github.com/cutreel/api/internal/websocket"
	"github.com/cutreel/api/pkg/response"
)

type ExportHandler struct {
	service   *service.ExportService
	hub       *websocket.Hub
	validator *validator.Validate
}

func NewExportHandler(svc *service.ExportService, hub *websocket.Hub, v *validator.Validate) *ExportHandler {
	return &ExportHandler{
		service:   svc,
		hub:       hub,
		validator: v,
	}
}

// Start handles POST /api/export/start
// @Summary      Start export job
// @Description  Freeze the project's timeline and queue an asynchronous export
// @Tags         Export
// @Accept       json
// @Produce      json
// @Param        request body model.ExportStartRequest true "Export start request"
// @Success      202 {object} model.ExportStartResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/export/start [post]
func (h *ExportHandler) Start(c *fiber.Ctx) error {
	var req model.ExportStartRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.StartExport(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/export/status/:jobId
// @Summary      Get export job status
// @Description  Get the current status and progress of an export job
// @Tags         Export
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.ExportStatusResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/export/status/{jobId} [get]
func (h *ExportHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetStatus(c.Context(), jobID)
	if err != nil {
		if err.Error() == "job not found" {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Result handles GET /api/export/result/:jobId
// @Summary      Get export job result
// @Description  Get the result of a succeeded export, including the file URL
// @Tags         Export
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.ExportResultResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/export/result/{jobId} [get]
func (h *ExportHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetResult(c.Context(), jobID)
	if err != nil {
		if err.Error() == "job not found" {
			return response.NotFound(c, "Job not found")
		}
		if err.Error() == "job not completed" {
			return response.ValidationError(c, "Job not completed yet", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Cancel handles POST /api/export/cancel/:jobId
// @Summary      Cancel export job
// @Description  Cancel a queued export job; running jobs finish normally
// @Tags         Export
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.ExportCancelResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/export/cancel/{jobId} [post]
func (h *ExportHandler) Cancel(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.CancelExport(c.Context(), jobID)
	if err != nil {
		if err.Error() == "job not found" {
			return response.NotFound(c, "Job not found")
		}
		if err.Error() == "job already started" {
			return response.Conflict(c, "Job already started")
		}
		return response.ServiceError(c, err.Error())
	}

	// The worker never touches a job canceled in the queue, so its watchers
	// only hear about the cancellation from here.
	h.hub.BroadcastCanceled(jobID)

	return response.OK(c, result)
}
