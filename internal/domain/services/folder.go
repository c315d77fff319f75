package services

import (
	"context"

	"chatterhub/internal/domain/models"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new folder
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder returns the folder or nil when it does not exist
	GetFolder(ctx context.Context, id string) (*models.Folder, error)

	// ListFolders lists every folder in creation order
	ListFolders(ctx context.Context) ([]models.Folder, error)

	// UpdateFolder renames, moves or edits the prompt of a folder.
	// A missing folder is a no-op and returns nil.
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*models.Folder, error)

	// DeleteFolder deletes only the folder. Children keep their dangling reference.
	DeleteFolder(ctx context.Context, id string) error

	// Tree builds the sidebar tree of folders and chat groups
	Tree(ctx context.Context) (*FolderTree, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name           string  `json:"name"`
	ParentFolderID *string `json:"parent_folder_id,omitempty"` // null for root folders
	SystemPrompt   string  `json:"system_prompt,omitempty"`
}

// UpdateFolderRequest represents a folder update request
type UpdateFolderRequest struct {
	Name           *string               `json:"name,omitempty"`
	ParentFolderID models.OptionalString `json:"-"` // null = move to root
	SystemPrompt   *string               `json:"system_prompt,omitempty"`
}

// FolderTree is the root level of the sidebar
type FolderTree struct {
	Folders      []*models.FolderTreeNode `json:"folders"`
	ChatGroupIDs []string                 `json:"chat_group_ids"` // groups not filed in any known folder
}
