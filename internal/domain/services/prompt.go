package services

import (
	"context"

	"chatterhub/internal/domain/models"
)

// PromptService manages the prompt library
type PromptService interface {
	CreatePrompt(ctx context.Context, req *CreatePromptRequest) (*models.Prompt, error)
	GetPrompt(ctx context.Context, id string) (*models.Prompt, error)
	ListPrompts(ctx context.Context) ([]models.Prompt, error)
	UpdatePrompt(ctx context.Context, id string, req *UpdatePromptRequest) (*models.Prompt, error)
	DeletePrompt(ctx context.Context, id string) error
	ToggleStar(ctx context.Context, id string) error

	// Duplicate copies a prompt under a new id. found is false when the source is missing.
	Duplicate(ctx context.Context, id string) (newID string, found bool, err error)
}

// CreatePromptRequest represents a prompt creation request
type CreatePromptRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
}

// UpdatePromptRequest represents a prompt update request
type UpdatePromptRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}
