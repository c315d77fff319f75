package services

import (
	"context"

	"chatterhub/internal/domain/models"
)

// ImageService stores image attachments of chat groups
type ImageService interface {
	// CreateImage stores data after sniffing its content type. Non-images are rejected.
	CreateImage(ctx context.Context, chatGroupID string, data []byte) (*models.ImageAttachment, error)
	GetImage(ctx context.Context, id string) (*models.ImageAttachment, error)
	ListByChatGroup(ctx context.Context, chatGroupID string) ([]models.ImageAttachment, error)
	DeleteImage(ctx context.Context, id string) error
}
