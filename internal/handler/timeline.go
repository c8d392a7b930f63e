package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cutreel/api/internal/model"
	"github.com/cutreel/api/internal/service"
	"github.com/cutreel/api/internal/store"
	"github.com/cutreel/api/pkg/response"
)

type TimelineHandler struct {
	service   *service.TimelineService
	validator *validator.Validate
}

func NewTimelineHandler(svc *service.TimelineService, v *validator.Validate) *TimelineHandler {
	return &TimelineHandler{
		service:   svc,
		validator: v,
	}
}

// CreateTrack handles POST /api/tracks
// @Summary      Create track
// @Description  Create a new track lane in a project
// @Tags         Timeline
// @Accept       json
// @Produce      json
// @Param        request body model.CreateTrackRequest true "Track create request"
// @Success      201 {object} model.Track
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/tracks [post]
func (h *TimelineHandler) CreateTrack(c *fiber.Ctx) error {
	var req model.CreateTrackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	track, err := h.service.CreateTrack(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, track)
}

// ListTracks handles GET /api/projects/:projectId/tracks
// @Summary      List tracks
// @Description  List a project's tracks in display order
// @Tags         Timeline
// @Produce      json
// @Param        projectId path string true "Project ID"
// @Success      200 {array} model.Track
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/projects/{projectId}/tracks [get]
func (h *TimelineHandler) ListTracks(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return response.ValidationError(c, "Project ID is required", nil)
	}

	tracks, err := h.service.ListTracks(c.Context(), projectID)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, tracks)
}

// GetTrack handles GET /api/tracks/:trackId
func (h *TimelineHandler) GetTrack(c *fiber.Ctx) error {
	track, err := h.service.GetTrack(c.Context(), c.Params("trackId"))
	if err != nil {
		return trackError(c, err)
	}
	return response.OK(c, track)
}

// UpdateTrack handles PATCH /api/tracks/:trackId
func (h *TimelineHandler) UpdateTrack(c *fiber.Ctx) error {
	var req model.UpdateTrackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	track, err := h.service.UpdateTrack(c.Context(), c.Params("trackId"), &req)
	if err != nil {
		return trackError(c, err)
	}
	return response.OK(c, track)
}

// DeleteTrack handles DELETE /api/tracks/:trackId
// @Summary      Delete track
// @Description  Delete a track and every keyframe placed on it
// @Tags         Timeline
// @Param        trackId path string true "Track ID"
// @Success      204
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/tracks/{trackId} [delete]
func (h *TimelineHandler) DeleteTrack(c *fiber.Ctx) error {
	if err := h.service.DeleteTrack(c.Context(), c.Params("trackId")); err != nil {
		return trackError(c, err)
	}
	return response.NoContent(c)
}

// CreateKeyframe handles POST /api/keyframes
// @Summary      Place keyframe
// @Description  Place a media interval on a track; the duration is clamped to the allowed range
// @Tags         Timeline
// @Accept       json
// @Produce      json
// @Param        request body model.CreateKeyframeRequest true "Keyframe create request"
// @Success      201 {object} model.Keyframe
// @Failure      400 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/keyframes [post]
func (h *TimelineHandler) CreateKeyframe(c *fiber.Ctx) error {
	var req model.CreateKeyframeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	kf, err := h.service.CreateKeyframe(c.Context(), &req)
	if err != nil {
		return keyframeError(c, err)
	}
	return response.Created(c, kf)
}

// ListKeyframes handles GET /api/tracks/:trackId/keyframes
func (h *TimelineHandler) ListKeyframes(c *fiber.Ctx) error {
	keyframes, err := h.service.ListKeyframes(c.Context(), c.Params("trackId"))
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, keyframes)
}

// GetKeyframe handles GET /api/keyframes/:keyframeId
func (h *TimelineHandler) GetKeyframe(c *fiber.Ctx) error {
	kf, err := h.service.GetKeyframe(c.Context(), c.Params("keyframeId"))
	if err != nil {
		return keyframeError(c, err)
	}
	return response.OK(c, kf)
}

// DeleteKeyframe handles DELETE /api/keyframes/:keyframeId
func (h *TimelineHandler) DeleteKeyframe(c *fiber.Ctx) error {
	if err := h.service.DeleteKeyframe(c.Context(), c.Params("keyframeId")); err != nil {
		return keyframeError(c, err)
	}
	return response.NoContent(c)
}

// MoveKeyframe handles POST /api/keyframes/:keyframeId/move
// @Summary      Commit drag
// @Description  Commit a drag gesture; the position is clamped against sibling keyframes
// @Tags         Timeline
// @Accept       json
// @Produce      json
// @Param        keyframeId path string true "Keyframe ID"
// @Param        request body model.MoveKeyframeRequest true "Drag commit"
// @Success      200 {object} model.Keyframe
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/keyframes/{keyframeId}/move [post]
func (h *TimelineHandler) MoveKeyframe(c *fiber.Ctx) error {
	var req model.MoveKeyframeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	kf, err := h.service.MoveKeyframe(c.Context(), c.Params("keyframeId"), &req)
	if err != nil {
		return keyframeError(c, err)
	}
	return response.OK(c, kf)
}

// ResizeKeyframe handles POST /api/keyframes/:keyframeId/resize
// @Summary      Commit resize
// @Description  Commit a trailing-edge resize; the duration snaps to the resize grid
// @Tags         Timeline
// @Accept       json
// @Produce      json
// @Param        keyframeId path string true "Keyframe ID"
// @Param        request body model.ResizeKeyframeRequest true "Resize commit"
// @Success      200 {object} model.Keyframe
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/keyframes/{keyframeId}/resize [post]
func (h *TimelineHandler) ResizeKeyframe(c *fiber.Ctx) error {
	var req model.ResizeKeyframeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	kf, err := h.service.ResizeKeyframe(c.Context(), c.Params("keyframeId"), &req)
	if err != nil {
		return keyframeError(c, err)
	}
	return response.OK(c, kf)
}

// DuplicateKeyframe handles POST /api/keyframes/:keyframeId/duplicate
// @Summary      Commit duplicate-drag
// @Description  Create a copy of a keyframe at the dragged position, leaving the original untouched
// @Tags         Timeline
// @Accept       json
// @Produce      json
// @Param        keyframeId path string true "Keyframe ID"
// @Param        request body model.DuplicateKeyframeRequest true "Duplicate commit"
// @Success      201 {object} model.Keyframe
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/keyframes/{keyframeId}/duplicate [post]
func (h *TimelineHandler) DuplicateKeyframe(c *fiber.Ctx) error {
	var req model.DuplicateKeyframeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	kf, err := h.service.DuplicateKeyframe(c.Context(), c.Params("keyframeId"), &req)
	if err != nil {
		return keyframeError(c, err)
	}
	return response.Created(c, kf)
}

// Ruler handles GET /api/timeline/ruler
// @Summary      Compute ruler ticks
// @Description  Compute tick marks for a timeline viewport at the given zoom
// @Tags         Timeline
// @Produce      json
// @Param        duration query number true "Timeline duration in seconds"
// @Param        zoom query number true "Zoom level"
// @Param        viewportWidth query number true "Viewport width in pixels"
// @Param        contentWidth query number false "Scrollable content width in pixels"
// @Param        scrollLeft query number false "Scroll offset in pixels"
// @Success      200 {object} timeline.Ruler
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/timeline/ruler [get]
func (h *TimelineHandler) Ruler(c *fiber.Ctx) error {
	var req model.RulerRequest
	if err := c.QueryParser(&req); err != nil {
		return response.ValidationError(c, "Invalid query parameters", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, h.service.ComputeRuler(&req))
}

func trackError(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return response.NotFound(c, "Track not found")
	}
	return response.ServiceError(c, err.Error())
}

func keyframeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return response.NotFound(c, "Keyframe not found")
	case errors.Is(err, service.ErrOverlap):
		return response.Conflict(c, "Keyframe overlaps an existing keyframe")
	case errors.Is(err, service.ErrTrackLocked):
		return response.Conflict(c, "Track is locked")
	default:
		return response.ServiceError(c, err.Error())
	}
}

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
