package handler

import (
	"log/slog"
	"net/http"

	"chatterhub/internal/capabilities"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/httputil"
)

// CustomModelHandler handles custom model HTTP requests and serves the provider catalog
type CustomModelHandler struct {
	models   services.CustomModelService
	registry *capabilities.Registry
	logger   *slog.Logger
}

// NewCustomModelHandler creates a new custom model handler
func NewCustomModelHandler(models services.CustomModelService, registry *capabilities.Registry, logger *slog.Logger) *CustomModelHandler {
	return &CustomModelHandler{
		models:   models,
		registry: registry,
		logger:   logger,
	}
}

// ListProviders returns the providers a custom model can target
// GET /api/providers
func (h *CustomModelHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.registry.ListProviders())
}

// ListCustomModels returns custom models; ?active=true limits to active ones
// GET /api/custom-models
func (h *CustomModelHandler) ListCustomModels(w http.ResponseWriter, r *http.Request) {
	list := h.models.ListCustomModels
	if r.URL.Query().Get("active") == "true" {
		list = h.models.ListActiveCustomModels
	}

	models, err := list(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models)
}

// CreateCustomModel adds a custom model
// POST /api/custom-models
func (h *CustomModelHandler) CreateCustomModel(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCustomModelRequest
	if !parseBody(w, r, &req) {
		return
	}

	model, err := h.models.CreateCustomModel(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, model)
}

// GetCustomModel returns one custom model
// GET /api/custom-models/{id}
func (h *CustomModelHandler) GetCustomModel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Custom model")
	if !ok {
		return
	}

	model, err := h.models.GetCustomModel(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, model, "custom model")
}

// UpdateCustomModel edits a custom model
// PATCH /api/custom-models/{id}
func (h *CustomModelHandler) UpdateCustomModel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Custom model")
	if !ok {
		return
	}

	var req services.UpdateCustomModelRequest
	if !parseBody(w, r, &req) {
		return
	}

	model, err := h.models.UpdateCustomModel(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, model, "custom model")
}

// DeleteCustomModel deletes a custom model
// DELETE /api/custom-models/{id}
func (h *CustomModelHandler) DeleteCustomModel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Custom model")
	if !ok {
		return
	}

	if err := h.models.DeleteCustomModel(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleActive flips the active flag
// POST /api/custom-models/{id}/toggle
func (h *CustomModelHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Custom model")
	if !ok {
		return
	}

	if err := h.models.ToggleActive(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
