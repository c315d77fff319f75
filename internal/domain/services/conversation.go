package services

import (
	"context"

	"chatterhub/internal/domain/models"
)

// ConversationAssembler builds the message list sent to a model
type ConversationAssembler interface {
	// Assemble returns an optional leading system entry followed by the chat
	// group's messages in time order. A non-nil override replaces the resolved prompt.
	Assemble(ctx context.Context, chatGroupID string, override *string) ([]models.ChatMessage, error)
}
