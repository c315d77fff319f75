package entity

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chatterhub/internal/config"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/store"
)

var tagRules = []validation.Rule{
	validation.Length(0, config.MaxTagsPerPrompt),
	validation.Each(validation.Length(1, config.MaxTagLength)),
}

type promptService struct {
	base
}

// NewPromptService creates a new prompt library service
func NewPromptService(s *store.Store, logger *slog.Logger, opts ...Option) services.PromptService {
	return &promptService{base: newBase(s, logger, opts)}
}

func (s *promptService) CreatePrompt(ctx context.Context, req *services.CreatePromptRequest) (*models.Prompt, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Tags = normalizeTags(req.Tags)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxPromptTitleLength)),
		validation.Field(&req.Content, validation.Required),
		validation.Field(&req.Tags, tagRules...),
	); err != nil {
		return nil, invalid(err)
	}

	now := s.timestamp()
	prompt := &models.Prompt{
		ID:          s.newID(),
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Tags:        req.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Put(ctx, s.store, repositories.Prompts, *prompt); err != nil {
		return nil, fmt.Errorf("failed to create prompt: %w", err)
	}

	s.logger.Info("prompt created", "id", prompt.ID, "title", prompt.Title)
	return prompt, nil
}

func (s *promptService) GetPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	return store.Get[models.Prompt](ctx, s.store, repositories.Prompts, id)
}

func (s *promptService) ListPrompts(ctx context.Context) ([]models.Prompt, error) {
	return store.All[models.Prompt](ctx, s.store, repositories.Prompts)
}

func (s *promptService) UpdatePrompt(ctx context.Context, id string, req *services.UpdatePromptRequest) (*models.Prompt, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if req.Tags != nil {
		tags := normalizeTags(*req.Tags)
		req.Tags = &tags
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(1, config.MaxPromptTitleLength)),
		validation.Field(&req.Content, validation.NilOrNotEmpty),
	); err != nil {
		return nil, invalid(err)
	}
	if req.Tags != nil {
		if err := validation.Validate(*req.Tags, tagRules...); err != nil {
			return nil, invalid(fmt.Errorf("tags: %w", err))
		}
	}

	prompt, err := store.Get[models.Prompt](ctx, s.store, repositories.Prompts, id)
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		s.logger.Debug("update of missing prompt ignored", "id", id)
		return nil, nil
	}

	if req.Title != nil {
		prompt.Title = *req.Title
	}
	if req.Description != nil {
		prompt.Description = *req.Description
	}
	if req.Content != nil {
		prompt.Content = *req.Content
	}
	if req.Tags != nil {
		prompt.Tags = *req.Tags
	}

	prompt.UpdatedAt = s.timestamp()
	if err := store.Put(ctx, s.store, repositories.Prompts, *prompt); err != nil {
		return nil, fmt.Errorf("failed to update prompt: %w", err)
	}

	s.logger.Info("prompt updated", "id", prompt.ID, "title", prompt.Title)
	return prompt, nil
}

func (s *promptService) DeletePrompt(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, repositories.Prompts, id); err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	s.logger.Info("prompt deleted", "id", id)
	return nil
}

func (s *promptService) ToggleStar(ctx context.Context, id string) error {
	prompt, err := store.Get[models.Prompt](ctx, s.store, repositories.Prompts, id)
	if err != nil {
		return err
	}
	if prompt == nil {
		return nil
	}

	prompt.IsStarred = !prompt.IsStarred
	prompt.UpdatedAt = s.timestamp()
	return store.Put(ctx, s.store, repositories.Prompts, *prompt)
}

// Duplicate copies description, content and tags verbatim. The copy is
// unstarred, gets fresh timestamps and a prefixed title.
func (s *promptService) Duplicate(ctx context.Context, id string) (string, bool, error) {
	src, err := store.Get[models.Prompt](ctx, s.store, repositories.Prompts, id)
	if err != nil {
		return "", false, err
	}
	if src == nil {
		return "", false, nil
	}

	now := s.timestamp()
	dup := models.Prompt{
		ID:          s.newID(),
		Title:       copyTitle(src.Title),
		Description: src.Description,
		Content:     src.Content,
		Tags:        slices.Clone(src.Tags),
		IsStarred:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Put(ctx, s.store, repositories.Prompts, dup); err != nil {
		return "", true, fmt.Errorf("failed to duplicate prompt: %w", err)
	}

	s.logger.Info("prompt duplicated", "source_id", id, "id", dup.ID)
	return dup.ID, true, nil
}

// copyTitle prefixes title, shortening it so the result stays within the
// title limit that CreatePrompt enforces
func copyTitle(title string) string {
	room := config.MaxPromptTitleLength - utf8.RuneCountInString(models.CopyTitlePrefix)
	if runes := []rune(title); len(runes) > room {
		title = strings.TrimSpace(string(runes[:room]))
	}
	return models.CopyTitlePrefix + title
}

// normalizeTags trims tags and drops blanks and repeats, keeping first-seen order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
