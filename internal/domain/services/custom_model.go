package services

import (
	"context"

	"chatterhub/internal/domain/models"
)

// CustomModelService manages user-defined model endpoints
type CustomModelService interface {
	CreateCustomModel(ctx context.Context, req *CreateCustomModelRequest) (*models.CustomModel, error)
	GetCustomModel(ctx context.Context, id string) (*models.CustomModel, error)
	ListCustomModels(ctx context.Context) ([]models.CustomModel, error)
	ListActiveCustomModels(ctx context.Context) ([]models.CustomModel, error)
	UpdateCustomModel(ctx context.Context, id string, req *UpdateCustomModelRequest) (*models.CustomModel, error)
	DeleteCustomModel(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) error
}

// CreateCustomModelRequest represents a custom model creation request.
// Empty BaseURL and zero ContextWindow take the provider defaults.
type CreateCustomModelRequest struct {
	Name          string   `json:"name"`
	Provider      string   `json:"provider"`
	ModelID       string   `json:"model_id"`
	BaseURL       string   `json:"base_url,omitempty"`
	APIKey        string   `json:"api_key,omitempty"`
	ContextWindow int      `json:"context_window,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
}

// UpdateCustomModelRequest represents a custom model update request
type UpdateCustomModelRequest struct {
	Name          *string  `json:"name,omitempty"`
	ModelID       *string  `json:"model_id,omitempty"`
	BaseURL       *string  `json:"base_url,omitempty"`
	APIKey        *string  `json:"api_key,omitempty"`
	ContextWindow *int     `json:"context_window,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
}
