package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterhub/internal/domain"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/services"
)

func TestMCPServerService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewMCPServerService(newTestStore(), testRegistry(t), testLogger())

	tests := []struct {
		name    string
		req     services.CreateMCPServerRequest
		wantErr bool
	}{
		{"stdio", services.CreateMCPServerRequest{Name: "git", Transport: models.TransportStdio, Command: "uvx", Args: []string{"mcp-server-git"}}, false},
		{"http", services.CreateMCPServerRequest{Name: "remote", Transport: models.TransportHTTP, URL: "https://mcp.example.com/mcp"}, false},
		{"stdio without command", services.CreateMCPServerRequest{Name: "a", Transport: models.TransportStdio}, true},
		{"sse without url", services.CreateMCPServerRequest{Name: "b", Transport: models.TransportSSE}, true},
		{"bad url", services.CreateMCPServerRequest{Name: "c", Transport: models.TransportHTTP, URL: "::nope"}, true},
		{"unknown transport", services.CreateMCPServerRequest{Name: "d", Transport: "websocket", URL: "https://x.example"}, true},
		{"blank name", services.CreateMCPServerRequest{Name: " ", Transport: models.TransportStdio, Command: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateMCPServer(ctx, &tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMCPServerService_NameConflict(t *testing.T) {
	ctx := context.Background()
	svc := NewMCPServerService(newTestStore(), testRegistry(t), testLogger())

	first, err := svc.CreateMCPServer(ctx, &services.CreateMCPServerRequest{Name: "Files", Transport: models.TransportStdio, Command: "x"})
	require.NoError(t, err)

	_, err = svc.CreateMCPServer(ctx, &services.CreateMCPServerRequest{Name: "files", Transport: models.TransportStdio, Command: "y"})
	require.ErrorIs(t, err, domain.ErrConflict)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "mcp_server", conflict.ResourceType)
	assert.Equal(t, first.ID, conflict.ResourceID)

	second, err := svc.CreateMCPServer(ctx, &services.CreateMCPServerRequest{Name: "Other", Transport: models.TransportStdio, Command: "y"})
	require.NoError(t, err)

	_, err = svc.UpdateMCPServer(ctx, second.ID, &services.UpdateMCPServerRequest{Name: ptr("FILES")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Renaming to its own name with different case is fine
	renamed, err := svc.UpdateMCPServer(ctx, first.ID, &services.UpdateMCPServerRequest{Name: ptr("FILES")})
	require.NoError(t, err)
	assert.Equal(t, "FILES", renamed.Name)
}

func TestMCPServerService_UpdateValidatesMergedRecord(t *testing.T) {
	ctx := context.Background()
	svc := NewMCPServerService(newTestStore(), testRegistry(t), testLogger())

	s, err := svc.CreateMCPServer(ctx, &services.CreateMCPServerRequest{Name: "remote", Transport: models.TransportSSE, URL: "https://mcp.example.com/sse"})
	require.NoError(t, err)

	_, err = svc.UpdateMCPServer(ctx, s.ID, &services.UpdateMCPServerRequest{URL: ptr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	headers := map[string]string{"Authorization": "Bearer t"}
	updated, err := svc.UpdateMCPServer(ctx, s.ID, &services.UpdateMCPServerRequest{Headers: &headers})
	require.NoError(t, err)
	assert.Equal(t, headers, updated.Headers)

	missing, err := svc.UpdateMCPServer(ctx, "nope", &services.UpdateMCPServerRequest{Name: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMCPServerService_Builtins(t *testing.T) {
	ctx := context.Background()
	svc := NewMCPServerService(newTestStore(), testRegistry(t), testLogger())

	added, err := svc.EnsureBuiltins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = svc.EnsureBuiltins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added, "existing builtins are kept")

	fetch, err := svc.GetMCPServer(ctx, "builtin-fetch")
	require.NoError(t, err)
	require.NotNil(t, fetch)
	assert.True(t, fetch.IsBuiltin)
	assert.False(t, fetch.IsActive)

	// Builtins can be toggled but not deleted
	require.NoError(t, svc.ToggleActive(ctx, "builtin-fetch"))
	require.NoError(t, svc.DeleteMCPServer(ctx, "builtin-fetch"))

	fetch, err = svc.GetMCPServer(ctx, "builtin-fetch")
	require.NoError(t, err)
	require.NotNil(t, fetch)
	assert.True(t, fetch.IsActive)

	active, err := svc.ListActiveMCPServers(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "builtin-fetch", active[0].ID)
}

func TestMCPServerService_DeleteAndToggleMissing(t *testing.T) {
	ctx := context.Background()
	svc := NewMCPServerService(newTestStore(), testRegistry(t), testLogger())

	s, err := svc.CreateMCPServer(ctx, &services.CreateMCPServerRequest{Name: "tmp", Transport: models.TransportStdio, Command: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMCPServer(ctx, s.ID))
	require.NoError(t, svc.DeleteMCPServer(ctx, s.ID))
	require.NoError(t, svc.ToggleActive(ctx, s.ID))

	all, err := svc.ListMCPServers(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
