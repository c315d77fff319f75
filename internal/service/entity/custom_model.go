package entity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"chatterhub/internal/capabilities"
	"chatterhub/internal/config"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/store"
)

type customModelService struct {
	base
	registry *capabilities.Registry
}

// NewCustomModelService creates a custom model service validated against the provider catalog
func NewCustomModelService(s *store.Store, registry *capabilities.Registry, logger *slog.Logger, opts ...Option) services.CustomModelService {
	return &customModelService{
		base:     newBase(s, logger, opts),
		registry: registry,
	}
}

func (s *customModelService) CreateCustomModel(ctx context.Context, req *services.CreateCustomModelRequest) (*models.CustomModel, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Provider = strings.TrimSpace(req.Provider)
	req.ModelID = strings.TrimSpace(req.ModelID)

	providerIDs := make([]interface{}, 0)
	for _, id := range s.registry.ProviderIDs() {
		providerIDs = append(providerIDs, id)
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxServerNameLength)),
		validation.Field(&req.Provider, validation.Required, validation.In(providerIDs...)),
		validation.Field(&req.ModelID, validation.Required),
		validation.Field(&req.BaseURL, is.URL),
		validation.Field(&req.ContextWindow, validation.Min(0)),
		validation.Field(&req.Temperature, validation.Min(0.0), validation.Max(2.0)),
	); err != nil {
		return nil, invalid(err)
	}

	provider, err := s.registry.GetProvider(req.Provider)
	if err != nil {
		return nil, invalid(err)
	}

	baseURL := req.BaseURL
	if baseURL == "" {
		baseURL = provider.DefaultBaseURL
	}
	if baseURL == "" {
		return nil, invalid(fmt.Errorf("base_url: required for provider %s", provider.ID))
	}
	if provider.RequiresAPIKey && req.APIKey == "" {
		return nil, invalid(fmt.Errorf("api_key: required for provider %s", provider.ID))
	}

	contextWindow := req.ContextWindow
	if contextWindow == 0 {
		contextWindow, err = s.registry.ContextWindow(provider.ID, req.ModelID)
		if err != nil {
			return nil, invalid(err)
		}
	}

	now := s.timestamp()
	model := &models.CustomModel{
		ID:            s.newID(),
		Name:          req.Name,
		Provider:      provider.ID,
		ModelID:       req.ModelID,
		BaseURL:       baseURL,
		APIKey:        req.APIKey,
		ContextWindow: contextWindow,
		Temperature:   req.Temperature,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.Put(ctx, s.store, repositories.CustomModels, *model); err != nil {
		return nil, fmt.Errorf("failed to create custom model: %w", err)
	}

	s.logger.Info("custom model created",
		"id", model.ID,
		"provider", model.Provider,
		"model_id", model.ModelID,
	)
	return model, nil
}

func (s *customModelService) GetCustomModel(ctx context.Context, id string) (*models.CustomModel, error) {
	return store.Get[models.CustomModel](ctx, s.store, repositories.CustomModels, id)
}

func (s *customModelService) ListCustomModels(ctx context.Context) ([]models.CustomModel, error) {
	return store.All[models.CustomModel](ctx, s.store, repositories.CustomModels)
}

func (s *customModelService) ListActiveCustomModels(ctx context.Context) ([]models.CustomModel, error) {
	return store.Query[models.CustomModel](ctx, s.store, repositories.CustomModels, repositories.Where("is_active", true), nil)
}

func (s *customModelService) UpdateCustomModel(ctx context.Context, id string, req *services.UpdateCustomModelRequest) (*models.CustomModel, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxServerNameLength)),
		validation.Field(&req.ModelID, validation.NilOrNotEmpty),
		validation.Field(&req.BaseURL, validation.NilOrNotEmpty, is.URL),
		validation.Field(&req.ContextWindow, validation.Min(1)),
		validation.Field(&req.Temperature, validation.Min(0.0), validation.Max(2.0)),
	); err != nil {
		return nil, invalid(err)
	}

	model, err := store.Get[models.CustomModel](ctx, s.store, repositories.CustomModels, id)
	if err != nil {
		return nil, err
	}
	if model == nil {
		s.logger.Debug("update of missing custom model ignored", "id", id)
		return nil, nil
	}

	if req.Name != nil {
		model.Name = strings.TrimSpace(*req.Name)
	}
	if req.ModelID != nil {
		model.ModelID = strings.TrimSpace(*req.ModelID)
	}
	if req.BaseURL != nil {
		model.BaseURL = *req.BaseURL
	}
	if req.APIKey != nil {
		model.APIKey = *req.APIKey
	}
	if req.ContextWindow != nil {
		model.ContextWindow = *req.ContextWindow
	}
	if req.Temperature != nil {
		model.Temperature = req.Temperature
	}

	model.UpdatedAt = s.timestamp()
	if err := store.Put(ctx, s.store, repositories.CustomModels, *model); err != nil {
		return nil, fmt.Errorf("failed to update custom model: %w", err)
	}

	s.logger.Info("custom model updated", "id", model.ID)
	return model, nil
}

func (s *customModelService) DeleteCustomModel(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, repositories.CustomModels, id); err != nil {
		return fmt.Errorf("failed to delete custom model: %w", err)
	}
	s.logger.Info("custom model deleted", "id", id)
	return nil
}

func (s *customModelService) ToggleActive(ctx context.Context, id string) error {
	model, err := store.Get[models.CustomModel](ctx, s.store, repositories.CustomModels, id)
	if err != nil {
		return err
	}
	if model == nil {
		return nil
	}

	model.IsActive = !model.IsActive
	model.UpdatedAt = s.timestamp()
	return store.Put(ctx, s.store, repositories.CustomModels, *model)
}
