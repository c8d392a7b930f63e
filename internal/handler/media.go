package handler

import (
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cutreel/api/internal/model"
	"github.com/cutreel/api/internal/service"
	"github.com/cutreel/api/internal/store"
	"github.com/cutreel/api/pkg/response"
)

type MediaHandler struct {
	service   *service.MediaService
	validator *validator.Validate
}

func NewMediaHandler(svc *service.MediaService, v *validator.Validate) *MediaHandler {
	return &MediaHandler{
		service:   svc,
		validator: v,
	}
}

// Register handles POST /api/media
// @Summary      Register media
// @Description  Register a generated or externally hosted media item
// @Tags         Media
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterMediaRequest true "Media registration"
// @Success      201 {object} model.MediaItem
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/media [post]
func (h *MediaHandler) Register(c *fiber.Ctx) error {
	var req model.RegisterMediaRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	item, err := h.service.RegisterMedia(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.Created(c, item)
}

// Upload handles POST /api/media/upload
// @Summary      Upload media file
// @Description  Upload a media file; bytes are held in the blob cache and served from /media/blob
// @Tags         Media
// @Accept       multipart/form-data
// @Produce      json
// @Param        projectId formData string true "Project ID"
// @Param        mediaType formData string true "image, video or audio"
// @Param        file formData file true "Media file"
// @Success      201 {object} model.MediaItem
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/media/upload [post]
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	projectID := c.FormValue("projectId")
	mediaType := model.MediaType(c.FormValue("mediaType"))
	if projectID == "" || mediaType == "" {
		return response.ValidationError(c, "projectId and mediaType are required", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "Missing file", nil)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to read upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return response.ServiceError(c, "Failed to read upload")
	}

	item, err := h.service.UploadBlob(c.Context(), projectID, fileHeader.Filename, mediaType, data)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.Created(c, item)
}

// List handles GET /api/projects/:projectId/media
func (h *MediaHandler) List(c *fiber.Ctx) error {
	items, err := h.service.ListMedia(c.Context(), c.Params("projectId"))
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, items)
}

// Get handles GET /api/media/:mediaId
func (h *MediaHandler) Get(c *fiber.Ctx) error {
	item, err := h.service.GetMedia(c.Context(), c.Params("mediaId"))
	if err != nil {
		return mediaError(c, err)
	}
	return response.OK(c, item)
}

// Refresh handles POST /api/media/:mediaId/refresh
// @Summary      Refresh media status
// @Description  Poll the generation provider once and apply the latest status
// @Tags         Media
// @Produce      json
// @Param        mediaId path string true "Media ID"
// @Success      200 {object} model.MediaItem
// @Failure      404 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/media/{mediaId}/refresh [post]
func (h *MediaHandler) Refresh(c *fiber.Ctx) error {
	item, err := h.service.RefreshMedia(c.Context(), c.Params("mediaId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Media not found")
		}
		return response.RenderError(c, err.Error())
	}
	return response.OK(c, item)
}

// Delete handles DELETE /api/media/:mediaId
// @Summary      Delete media
// @Description  Delete a media item and every keyframe referencing it
// @Tags         Media
// @Param        mediaId path string true "Media ID"
// @Success      204
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/media/{mediaId} [delete]
func (h *MediaHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteMedia(c.Context(), c.Params("mediaId")); err != nil {
		return mediaError(c, err)
	}
	return response.NoContent(c)
}

// Blob handles GET /media/blob/:mediaId, serving uploaded bytes from the
// object-URL cache.
func (h *MediaHandler) Blob(c *fiber.Ctx) error {
	data, ok := h.service.Blob(c.Params("mediaId"))
	if !ok {
		return response.NotFound(c, "Blob not found")
	}
	return c.Send(data)
}

func mediaError(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return response.NotFound(c, "Media not found")
	}
	return response.ServiceError(c, err.Error())
}
