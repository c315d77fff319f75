package entity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chatterhub/internal/config"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/store"
)

type chatGroupService struct {
	base
}

// NewChatGroupService creates a new chat group service
func NewChatGroupService(s *store.Store, logger *slog.Logger, opts ...Option) services.ChatGroupService {
	return &chatGroupService{base: newBase(s, logger, opts)}
}

func (s *chatGroupService) CreateChatGroup(ctx context.Context, req *services.CreateChatGroupRequest) (*models.ChatGroup, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.FolderID = normalizeRef(req.FolderID)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxChatGroupNameLength)),
		validation.Field(&req.OwnSystemPrompt, validation.Length(0, config.MaxSystemPromptLength)),
	); err != nil {
		return nil, invalid(err)
	}

	now := s.timestamp()
	group := &models.ChatGroup{
		ID:              s.newID(),
		Name:            req.Name,
		FolderID:        req.FolderID,
		OwnSystemPrompt: req.OwnSystemPrompt,
		Model:           req.Model,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := store.Put(ctx, s.store, repositories.ChatGroups, *group); err != nil {
		return nil, fmt.Errorf("failed to create chat group: %w", err)
	}

	s.logger.Info("chat group created",
		"id", group.ID,
		"name", group.Name,
		"folder_id", group.FolderID,
	)
	return group, nil
}

func (s *chatGroupService) GetChatGroup(ctx context.Context, id string) (*models.ChatGroup, error) {
	return store.Get[models.ChatGroup](ctx, s.store, repositories.ChatGroups, id)
}

func (s *chatGroupService) ListChatGroups(ctx context.Context) ([]models.ChatGroup, error) {
	return store.All[models.ChatGroup](ctx, s.store, repositories.ChatGroups)
}

func (s *chatGroupService) ListByFolder(ctx context.Context, folderID *string) ([]models.ChatGroup, error) {
	var value any
	if folderID != nil {
		value = *folderID
	}
	return store.Query[models.ChatGroup](ctx, s.store, repositories.ChatGroups, repositories.Where("folder_id", value), nil)
}

func (s *chatGroupService) UpdateChatGroup(ctx context.Context, id string, req *services.UpdateChatGroupRequest) (*models.ChatGroup, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxChatGroupNameLength)),
		validation.Field(&req.OwnSystemPrompt, validation.Length(0, config.MaxSystemPromptLength)),
	); err != nil {
		return nil, invalid(err)
	}

	group, err := store.Get[models.ChatGroup](ctx, s.store, repositories.ChatGroups, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		s.logger.Debug("update of missing chat group ignored", "id", id)
		return nil, nil
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.OwnSystemPrompt != nil {
		group.OwnSystemPrompt = *req.OwnSystemPrompt
	}
	if req.Model != nil {
		group.Model = *req.Model
	}
	if req.FolderID.Present {
		group.FolderID = normalizeRef(req.FolderID.Value)
	}

	group.UpdatedAt = s.timestamp()
	if err := store.Put(ctx, s.store, repositories.ChatGroups, *group); err != nil {
		return nil, fmt.Errorf("failed to update chat group: %w", err)
	}

	s.logger.Info("chat group updated",
		"id", group.ID,
		"name", group.Name,
		"folder_id", group.FolderID,
	)
	return group, nil
}

func (s *chatGroupService) DeleteChatGroup(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, repositories.ChatGroups, id); err != nil {
		return fmt.Errorf("failed to delete chat group: %w", err)
	}
	s.logger.Info("chat group deleted", "id", id)
	return nil
}
