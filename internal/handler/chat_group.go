package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"chatterhub/internal/config"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/httputil"
)

// ChatGroupHandler handles chat group HTTP requests, including the
// read-side prompt and conversation views of a group
type ChatGroupHandler struct {
	chatGroups services.ChatGroupService
	messages   services.MessageService
	images     services.ImageService
	resolver   services.SystemPromptResolver
	assembler  services.ConversationAssembler
	logger     *slog.Logger
}

// NewChatGroupHandler creates a new chat group handler
func NewChatGroupHandler(
	chatGroups services.ChatGroupService,
	messages services.MessageService,
	images services.ImageService,
	resolver services.SystemPromptResolver,
	assembler services.ConversationAssembler,
	logger *slog.Logger,
) *ChatGroupHandler {
	return &ChatGroupHandler{
		chatGroups: chatGroups,
		messages:   messages,
		images:     images,
		resolver:   resolver,
		assembler:  assembler,
		logger:     logger,
	}
}

// ListChatGroups returns every chat group
// GET /api/chat-groups
func (h *ChatGroupHandler) ListChatGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.chatGroups.ListChatGroups(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, groups)
}

// CreateChatGroup creates a chat group
// POST /api/chat-groups
func (h *ChatGroupHandler) CreateChatGroup(w http.ResponseWriter, r *http.Request) {
	var req services.CreateChatGroupRequest
	if !parseBody(w, r, &req) {
		return
	}

	group, err := h.chatGroups.CreateChatGroup(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, group)
}

// GetChatGroup returns one chat group
// GET /api/chat-groups/{id}
func (h *ChatGroupHandler) GetChatGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Chat group")
	if !ok {
		return
	}

	group, err := h.chatGroups.GetChatGroup(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, group, "chat group")
}

// UpdateChatGroup edits a chat group
// PATCH /api/chat-groups/{id}
func (h *ChatGroupHandler) UpdateChatGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Chat group")
	if !ok {
		return
	}

	var body updateChatGroupBody
	if !parseBody(w, r, &body) {
		return
	}
	req := body.UpdateChatGroupRequest
	req.FolderID = optional(body.FolderID)

	group, err := h.chatGroups.UpdateChatGroup(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, group, "chat group")
}

// DeleteChatGroup deletes a chat group. Its messages are left in place.
// DELETE /api/chat-groups/{id}
func (h *ChatGroupHandler) DeleteChatGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Chat group")
	if !ok {
		return
	}

	if err := h.chatGroups.DeleteChatGroup(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMessages returns the group's messages in conversation order
// GET /api/chat-groups/{id}/messages
func (h *ChatGroupHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Chat group")
	if !ok {
		return
	}

	msgs, err := h.messages.ListByChatGroup(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, msgs)
}

// DeleteMessages removes every message of the group
// DELETE /api/chat-groups/{id}/messages
func (h *ChatGroupHandler) DeleteMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Chat group")
	if !ok {
		return
	}

	n, err := h.messages.DeleteByChatGroup(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// GetEffectivePrompt returns the resolved system prompt
// GET /api/chat-groups/{id}/effective-prompt
func (h *ChatGroupHandler) GetEffectivePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Chat group")
	if !ok {
		return
	}

	ep, err := h.resolver.EffectivePrompt(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, ep)
}

// GetAncestry returns the folders above the group, root first
// GET /api/chat-groups/{id}/ancestry
func (h *ChatGroupHandler) GetAncestry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Chat group")
	if !ok {
		return
	}

	path, err := h.resolver.AncestryPath(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, path)
}

// ConversationRequest optionally overrides the resolved system prompt.
// Absent or null uses the resolved prompt; "" sends no system entry.
type ConversationRequest struct {
	SystemPromptOverride httputil.OptionalString `json:"system_prompt_override"`
}

// AssembleConversation returns the message list handed to model invocation
// POST /api/chat-groups/{id}/conversation
func (h *ChatGroupHandler) AssembleConversation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Chat group")
	if !ok {
		return
	}

	// An empty body means no override
	var req ConversationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	msgs, err := h.assembler.Assemble(r.Context(), id, req.SystemPromptOverride.Value)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, msgs)
}

// ListImages returns the group's image attachments
// GET /api/chat-groups/{id}/images
func (h *ChatGroupHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Chat group")
	if !ok {
		return
	}

	images, err := h.images.ListByChatGroup(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, images)
}

// UploadImage stores the raw request body as an image attachment
// POST /api/chat-groups/{id}/images
func (h *ChatGroupHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Chat group")
	if !ok {
		return
	}

	body := http.MaxBytesReader(w, r.Body, config.MaxImageBytes+1)
	data, err := io.ReadAll(body)
	if err != nil {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	img, err := h.images.CreateImage(r.Context(), id, data)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, img)
}

// updateChatGroupBody is the PATCH body; folder_id distinguishes absent from null
type updateChatGroupBody struct {
	services.UpdateChatGroupRequest
	FolderID httputil.OptionalString `json:"folder_id"`
}
