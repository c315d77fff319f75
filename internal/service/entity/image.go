package entity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"chatterhub/internal/config"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/store"
)

type imageService struct {
	base
}

// NewImageService creates an image attachment service
func NewImageService(s *store.Store, logger *slog.Logger, opts ...Option) services.ImageService {
	return &imageService{base: newBase(s, logger, opts)}
}

func (s *imageService) CreateImage(ctx context.Context, chatGroupID string, data []byte) (*models.ImageAttachment, error) {
	if chatGroupID == "" {
		return nil, invalid(fmt.Errorf("chat_group_id: cannot be blank"))
	}
	if len(data) == 0 {
		return nil, invalid(fmt.Errorf("image data is empty"))
	}
	if len(data) > config.MaxImageBytes {
		return nil, invalid(fmt.Errorf("image exceeds %d bytes", config.MaxImageBytes))
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, invalid(fmt.Errorf("unsupported attachment type %s", mime.String()))
	}

	now := s.timestamp()
	img := &models.ImageAttachment{
		ID:          s.newID(),
		ChatGroupID: chatGroupID,
		MimeType:    mime.String(),
		Data:        data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Put(ctx, s.store, repositories.ImageAttachments, *img); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	s.logger.Info("image attached",
		"id", img.ID,
		"chat_group_id", chatGroupID,
		"mime_type", img.MimeType,
		"bytes", len(data),
	)
	return img, nil
}

func (s *imageService) GetImage(ctx context.Context, id string) (*models.ImageAttachment, error) {
	return store.Get[models.ImageAttachment](ctx, s.store, repositories.ImageAttachments, id)
}

func (s *imageService) ListByChatGroup(ctx context.Context, chatGroupID string) ([]models.ImageAttachment, error) {
	return store.Query[models.ImageAttachment](ctx, s.store, repositories.ImageAttachments, repositories.Where("chat_group_id", chatGroupID), nil)
}

func (s *imageService) DeleteImage(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, repositories.ImageAttachments, id); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
