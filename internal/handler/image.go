package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"chatterhub/internal/domain/services"
	"chatterhub/internal/httputil"
)

// ImageHandler serves stored image attachments
type ImageHandler struct {
	images services.ImageService
	logger *slog.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(images services.ImageService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		images: images,
		logger: logger,
	}
}

// GetImage writes the raw image bytes
// GET /api/images/{id}
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Image")
	if !ok {
		return
	}

	img, err := h.images.GetImage(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	if img == nil {
		httputil.RespondError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// DeleteImage deletes an attachment
// DELETE /api/images/{id}
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Image")
	if !ok {
		return
	}

	if err := h.images.DeleteImage(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
