package services

import (
	"context"
	"time"

	"chatterhub/internal/domain/models"
)

// MessageService handles chat message persistence
type MessageService interface {
	CreateMessage(ctx context.Context, req *CreateMessageRequest) (*models.Message, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)

	// ListByChatGroup returns the group's messages ordered by CreatedAt, ties by insertion
	ListByChatGroup(ctx context.Context, chatGroupID string) ([]models.Message, error)

	UpdateMessage(ctx context.Context, id string, req *UpdateMessageRequest) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error

	// DeleteByChatGroup removes every message of a group and returns how many were removed
	DeleteByChatGroup(ctx context.Context, chatGroupID string) (int, error)

	// ToggleStar flips the starred flag. A missing message is a no-op.
	ToggleStar(ctx context.Context, id string) error
}

// CreateMessageRequest represents a message creation request
type CreateMessageRequest struct {
	ChatGroupID string     `json:"chat_group_id"`
	ChatID      string     `json:"chat_id,omitempty"` // defaults to the chat group id
	Role        string     `json:"role"`
	Content     string     `json:"content"`
	Model       *string    `json:"model,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"` // imported history keeps its timestamps
}

// UpdateMessageRequest represents a message edit
type UpdateMessageRequest struct {
	Content *string               `json:"content,omitempty"`
	Model   models.OptionalString `json:"-"` // mapped from the request body by the handler
}
