package services

import (
	"context"

	"chatterhub/internal/domain/models"
)

// ChatGroupService handles chat group business logic
type ChatGroupService interface {
	CreateChatGroup(ctx context.Context, req *CreateChatGroupRequest) (*models.ChatGroup, error)
	GetChatGroup(ctx context.Context, id string) (*models.ChatGroup, error)
	ListChatGroups(ctx context.Context) ([]models.ChatGroup, error)

	// ListByFolder lists the chat groups filed directly in a folder (nil = unfiled)
	ListByFolder(ctx context.Context, folderID *string) ([]models.ChatGroup, error)

	UpdateChatGroup(ctx context.Context, id string, req *UpdateChatGroupRequest) (*models.ChatGroup, error)

	// DeleteChatGroup deletes only the group; messages are removed explicitly
	DeleteChatGroup(ctx context.Context, id string) error
}

// CreateChatGroupRequest represents a chat group creation request
type CreateChatGroupRequest struct {
	Name            string  `json:"name"`
	FolderID        *string `json:"folder_id,omitempty"`
	OwnSystemPrompt string  `json:"own_system_prompt,omitempty"`
	Model           string  `json:"model,omitempty"`
}

// UpdateChatGroupRequest represents a chat group update request
type UpdateChatGroupRequest struct {
	Name            *string               `json:"name,omitempty"`
	FolderID        models.OptionalString `json:"-"` // null = unfile
	OwnSystemPrompt *string               `json:"own_system_prompt,omitempty"`
	Model           *string               `json:"model,omitempty"`
}
