package handler

import (
	"log/slog"
	"net/http"

	"chatterhub/internal/domain/services"
	"chatterhub/internal/httputil"
)

// PromptHandler handles prompt library HTTP requests
type PromptHandler struct {
	prompts services.PromptService
	logger  *slog.Logger
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(prompts services.PromptService, logger *slog.Logger) *PromptHandler {
	return &PromptHandler{
		prompts: prompts,
		logger:  logger,
	}
}

// ListPrompts returns the prompt library
// GET /api/prompts
func (h *PromptHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.prompts.ListPrompts(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, prompts)
}

// CreatePrompt adds a prompt
// POST /api/prompts
func (h *PromptHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePromptRequest
	if !parseBody(w, r, &req) {
		return
	}

	prompt, err := h.prompts.CreatePrompt(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, prompt)
}

// GetPrompt returns one prompt
// GET /api/prompts/{id}
func (h *PromptHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	prompt, err := h.prompts.GetPrompt(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, prompt, "prompt")
}

// UpdatePrompt edits a prompt
// PATCH /api/prompts/{id}
func (h *PromptHandler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	var req services.UpdatePromptRequest
	if !parseBody(w, r, &req) {
		return
	}

	prompt, err := h.prompts.UpdatePrompt(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, prompt, "prompt")
}

// DeletePrompt deletes a prompt
// DELETE /api/prompts/{id}
func (h *PromptHandler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	if err := h.prompts.DeletePrompt(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleStar flips the starred flag
// POST /api/prompts/{id}/star
func (h *PromptHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	if err := h.prompts.ToggleStar(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Duplicate copies a prompt
// POST /api/prompts/{id}/duplicate
func (h *PromptHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	newID, found, err := h.prompts.Duplicate(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	if !found {
		httputil.RespondError(w, http.StatusNotFound, "prompt not found")
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"id": newID})
}
