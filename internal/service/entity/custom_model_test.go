package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterhub/internal/domain"
	"chatterhub/internal/domain/services"
)

func TestCustomModelService_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomModelService(newTestStore(), testRegistry(t), testLogger())

	m, err := svc.CreateCustomModel(ctx, &services.CreateCustomModelRequest{
		Name:     "Local llama",
		Provider: "ollama",
		ModelID:  "llama3.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", m.BaseURL)
	assert.Equal(t, 131072, m.ContextWindow)
	assert.True(t, m.IsActive)
	assert.Nil(t, m.Temperature)

	explicit, err := svc.CreateCustomModel(ctx, &services.CreateCustomModelRequest{
		Name:          "Proxy",
		Provider:      "openai-compatible",
		ModelID:       "qwen",
		BaseURL:       "https://llm.internal.example/v1",
		ContextWindow: 32768,
		Temperature:   ptr(0.2),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://llm.internal.example/v1", explicit.BaseURL)
	assert.Equal(t, 32768, explicit.ContextWindow)
	assert.Equal(t, 0.2, *explicit.Temperature)
}

func TestCustomModelService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomModelService(newTestStore(), testRegistry(t), testLogger())

	tests := []struct {
		name string
		req  services.CreateCustomModelRequest
	}{
		{"unknown provider", services.CreateCustomModelRequest{Name: "x", Provider: "acme", ModelID: "m"}},
		{"missing model", services.CreateCustomModelRequest{Name: "x", Provider: "ollama"}},
		{"bad url", services.CreateCustomModelRequest{Name: "x", Provider: "ollama", ModelID: "m", BaseURL: "not a url"}},
		{"temperature out of range", services.CreateCustomModelRequest{Name: "x", Provider: "ollama", ModelID: "m", Temperature: ptr(3.5)}},
		{"api key required", services.CreateCustomModelRequest{Name: "x", Provider: "openai", ModelID: "gpt-4o"}},
		{"base url required", services.CreateCustomModelRequest{Name: "x", Provider: "openai-compatible", ModelID: "m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCustomModel(ctx, &tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCustomModelService_UpdateAndToggle(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomModelService(newTestStore(), testRegistry(t), testLogger())

	m, err := svc.CreateCustomModel(ctx, &services.CreateCustomModelRequest{Name: "gpt", Provider: "openai", ModelID: "gpt-4o", APIKey: "sk-test"})
	require.NoError(t, err)

	updated, err := svc.UpdateCustomModel(ctx, m.ID, &services.UpdateCustomModelRequest{ContextWindow: ptr(64000)})
	require.NoError(t, err)
	assert.Equal(t, 64000, updated.ContextWindow)
	assert.Equal(t, "sk-test", updated.APIKey)

	_, err = svc.UpdateCustomModel(ctx, m.ID, &services.UpdateCustomModelRequest{BaseURL: ptr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	missing, err := svc.UpdateCustomModel(ctx, "nope", &services.UpdateCustomModelRequest{Name: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, svc.ToggleActive(ctx, m.ID))
	active, err := svc.ListActiveCustomModels(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, svc.ToggleActive(ctx, m.ID))
	active, err = svc.ListActiveCustomModels(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, svc.ToggleActive(ctx, "nope"))

	require.NoError(t, svc.DeleteCustomModel(ctx, m.ID))
	all, err := svc.ListCustomModels(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
