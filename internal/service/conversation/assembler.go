package conversation

import (
	"context"
	"fmt"
	"log/slog"

	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/service/entity"
	"chatterhub/internal/store"
)

// Assembler converts a chat group's stored history into the role/content
// sequence handed to model invocation
type Assembler struct {
	store    *store.Store
	resolver services.SystemPromptResolver
	logger   *slog.Logger
}

var _ services.ConversationAssembler = (*Assembler)(nil)

// NewAssembler creates a new Assembler
func NewAssembler(s *store.Store, resolver services.SystemPromptResolver, logger *slog.Logger) *Assembler {
	return &Assembler{
		store:    s,
		resolver: resolver,
		logger:   logger,
	}
}

// Assemble returns the optional system entry followed by the chat group's
// messages, oldest first. A nil override means "use the resolved prompt"; an
// empty one suppresses the system entry. Storage faults are logged and yield
// what could be assembled, alongside the error.
func (a *Assembler) Assemble(ctx context.Context, chatGroupID string, override *string) ([]models.ChatMessage, error) {
	out := []models.ChatMessage{}

	var system string
	if override != nil {
		system = *override
	} else {
		ep, err := a.resolver.EffectivePrompt(ctx, chatGroupID)
		if err != nil {
			a.logger.Warn("assembling without system prompt", "chat_group_id", chatGroupID, "error", err)
		}
		system = ep.Prompt
	}
	if system != "" {
		out = append(out, models.ChatMessage{Role: models.RoleSystem, Content: system})
	}

	msgs, err := entity.ListMessages(ctx, a.store, chatGroupID)
	if err != nil {
		a.logger.Error("failed to load messages", "chat_group_id", chatGroupID, "error", err)
		return out, fmt.Errorf("load messages: %w", err)
	}

	for _, m := range msgs {
		switch m.Role {
		case models.RoleUser, models.RoleAssistant, models.RoleSystem:
			out = append(out, models.ChatMessage{Role: m.Role, Content: m.Content})
		default:
			a.logger.Warn("skipping message with unsupported role", "message_id", m.ID, "role", m.Role)
		}
	}

	a.logger.Debug("conversation assembled",
		"chat_group_id", chatGroupID,
		"messages", len(out),
		"has_system", system != "",
	)
	return out, nil
}
