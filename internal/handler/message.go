package handler

import (
	"log/slog"
	"net/http"

	"chatterhub/internal/domain/services"
	"chatterhub/internal/httputil"
)

// MessageHandler handles message HTTP requests
type MessageHandler struct {
	messages services.MessageService
	logger   *slog.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messages services.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		logger:   logger,
	}
}

// CreateMessage appends a message to a chat group
// POST /api/messages
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req services.CreateMessageRequest
	if !parseBody(w, r, &req) {
		return
	}

	msg, err := h.messages.CreateMessage(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, msg)
}

// GetMessage returns one message
// GET /api/messages/{id}
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Message")
	if !ok {
		return
	}

	msg, err := h.messages.GetMessage(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, msg, "message")
}

// UpdateMessage edits a message
// PATCH /api/messages/{id}
func (h *MessageHandler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Message")
	if !ok {
		return
	}

	var body updateMessageBody
	if !parseBody(w, r, &body) {
		return
	}
	req := body.UpdateMessageRequest
	req.Model = optional(body.Model)

	msg, err := h.messages.UpdateMessage(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, msg, "message")
}

// DeleteMessage deletes a message
// DELETE /api/messages/{id}
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Message")
	if !ok {
		return
	}

	if err := h.messages.DeleteMessage(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleStar flips the starred flag
// POST /api/messages/{id}/star
func (h *MessageHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Message")
	if !ok {
		return
	}

	if err := h.messages.ToggleStar(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateMessageBody is the PATCH body; model distinguishes absent from null
type updateMessageBody struct {
	services.UpdateMessageRequest
	Model httputil.OptionalString `json:"model"`
}
