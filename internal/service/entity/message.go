package entity

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/store"
)

type messageService struct {
	base
}

// NewMessageService creates a new message service
func NewMessageService(s *store.Store, logger *slog.Logger, opts ...Option) services.MessageService {
	return &messageService{base: newBase(s, logger, opts)}
}

func (s *messageService) CreateMessage(ctx context.Context, req *services.CreateMessageRequest) (*models.Message, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ChatGroupID, validation.Required),
		validation.Field(&req.Role,
			validation.Required,
			validation.In(models.RoleUser, models.RoleAssistant, models.RoleSystem),
		),
	); err != nil {
		return nil, invalid(err)
	}

	now := s.timestamp()
	created := now
	if req.CreatedAt != nil {
		created = req.CreatedAt.UTC()
	}
	chatID := req.ChatID
	if chatID == "" {
		chatID = req.ChatGroupID
	}

	msg := &models.Message{
		ID:          s.newID(),
		ChatID:      chatID,
		ChatGroupID: req.ChatGroupID,
		Role:        req.Role,
		Content:     req.Content,
		Model:       req.Model,
		CreatedAt:   created,
		UpdatedAt:   now,
	}
	if err := store.Put(ctx, s.store, repositories.Messages, *msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.logger.Debug("message created",
		"id", msg.ID,
		"chat_group_id", msg.ChatGroupID,
		"role", msg.Role,
	)
	return msg, nil
}

func (s *messageService) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	return store.Get[models.Message](ctx, s.store, repositories.Messages, id)
}

// ListByChatGroup returns messages ordered by CreatedAt. The store yields
// insertion order, so a stable sort keeps inserts with equal timestamps in order.
func (s *messageService) ListByChatGroup(ctx context.Context, chatGroupID string) ([]models.Message, error) {
	return ListMessages(ctx, s.store, chatGroupID)
}

func (s *messageService) UpdateMessage(ctx context.Context, id string, req *services.UpdateMessageRequest) (*models.Message, error) {
	if req.Content == nil && !req.Model.Present {
		return nil, invalid(fmt.Errorf("at least one field must be provided"))
	}

	msg, err := store.Get[models.Message](ctx, s.store, repositories.Messages, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		s.logger.Debug("update of missing message ignored", "id", id)
		return nil, nil
	}

	if req.Content != nil {
		msg.Content = *req.Content
	}
	if req.Model.Present {
		msg.Model = req.Model.Value
	}

	msg.UpdatedAt = s.timestamp()
	if err := store.Put(ctx, s.store, repositories.Messages, *msg); err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}
	return msg, nil
}

func (s *messageService) DeleteMessage(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, repositories.Messages, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (s *messageService) DeleteByChatGroup(ctx context.Context, chatGroupID string) (int, error) {
	msgs, err := store.Query[models.Message](ctx, s.store, repositories.Messages, repositories.Where("chat_group_id", chatGroupID), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list messages: %w", err)
	}

	for i, m := range msgs {
		if err := s.store.Delete(ctx, repositories.Messages, m.ID); err != nil {
			return i, fmt.Errorf("failed to delete message %s: %w", m.ID, err)
		}
	}

	s.logger.Info("chat group messages deleted", "chat_group_id", chatGroupID, "count", len(msgs))
	return len(msgs), nil
}

// ToggleStar reads then writes; concurrent toggles of one message may lose an update
func (s *messageService) ToggleStar(ctx context.Context, id string) error {
	msg, err := store.Get[models.Message](ctx, s.store, repositories.Messages, id)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}

	msg.Starred = !msg.Starred
	msg.UpdatedAt = s.timestamp()
	return store.Put(ctx, s.store, repositories.Messages, *msg)
}

// ListMessages loads a chat group's messages ordered by CreatedAt, ties in insertion order
func ListMessages(ctx context.Context, s *store.Store, chatGroupID string) ([]models.Message, error) {
	msgs, err := store.Query[models.Message](ctx, s, repositories.Messages, repositories.Where("chat_group_id", chatGroupID), nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}
