package handler

import (
	"log/slog"
	"net/http"

	"chatterhub/internal/domain/services"
	"chatterhub/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	resolver      services.SystemPromptResolver
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, resolver services.SystemPromptResolver, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		resolver:      resolver,
		logger:        logger,
	}
}

// ListFolders returns every folder
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.ListFolders(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if !parseBody(w, r, &req) {
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder returns one folder
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, folder, "folder")
}

// UpdateFolder renames, moves or edits the prompt of a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}

	var body updateFolderBody
	if !parseBody(w, r, &body) {
		return
	}
	req := body.UpdateFolderRequest
	req.ParentFolderID = optional(body.ParentFolderID)

	folder, err := h.folderService.UpdateFolder(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, folder, "folder")
}

// DeleteFolder deletes a folder; its children become unfiled
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTree returns the sidebar tree
// GET /api/tree
func (h *FolderHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.folderService.Tree(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tree)
}

// GetInheritedPrompt returns what the folder inherits from its ancestors
// GET /api/folders/{id}/inherited-prompt
func (h *FolderHandler) GetInheritedPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}

	ep, err := h.resolver.InheritedForFolder(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, ep)
}

// GetAffectedChatGroups lists chat groups whose prompt comes from the folder
// GET /api/folders/{id}/affected-chat-groups
func (h *FolderHandler) GetAffectedChatGroups(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}

	ids, err := h.resolver.AffectedChatGroups(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"chat_group_ids": ids})
}

// PreviewPromptRequest carries a pending folder prompt edit
type PreviewPromptRequest struct {
	SystemPrompt string `json:"system_prompt"`
}

// PreviewPrompt reports chat groups whose prompt would change under an edit
// POST /api/folders/{id}/prompt-preview
func (h *FolderHandler) PreviewPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}

	var req PreviewPromptRequest
	if !parseBody(w, r, &req) {
		return
	}

	changes, err := h.resolver.PreviewFolderPrompt(r.Context(), id, req.SystemPrompt)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"changes": changes})
}

// updateFolderBody is the PATCH body; parent_folder_id distinguishes absent from null
type updateFolderBody struct {
	services.UpdateFolderRequest
	ParentFolderID httputil.OptionalString `json:"parent_folder_id"`
}
