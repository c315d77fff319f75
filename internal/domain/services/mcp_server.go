package services

import (
	"context"

	"chatterhub/internal/domain/models"
)

// MCPServerService manages tool-server registrations
type MCPServerService interface {
	CreateMCPServer(ctx context.Context, req *CreateMCPServerRequest) (*models.MCPServer, error)
	GetMCPServer(ctx context.Context, id string) (*models.MCPServer, error)
	ListMCPServers(ctx context.Context) ([]models.MCPServer, error)
	ListActiveMCPServers(ctx context.Context) ([]models.MCPServer, error)
	UpdateMCPServer(ctx context.Context, id string, req *UpdateMCPServerRequest) (*models.MCPServer, error)

	// DeleteMCPServer removes a registration. Builtin registrations are kept.
	DeleteMCPServer(ctx context.Context, id string) error

	ToggleActive(ctx context.Context, id string) error

	// EnsureBuiltins registers missing builtin servers and returns how many were added
	EnsureBuiltins(ctx context.Context) (int, error)
}

// CreateMCPServerRequest represents a registration request
type CreateMCPServerRequest struct {
	Name      string            `json:"name"`
	Transport string            `json:"transport"`
	Command   string            `json:"command,omitempty"`
	Args      []string          `json:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	URL       string            `json:"url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	IsActive  bool              `json:"is_active"`
}

// UpdateMCPServerRequest represents a registration update
type UpdateMCPServerRequest struct {
	Name    *string            `json:"name,omitempty"`
	Command *string            `json:"command,omitempty"`
	Args    *[]string          `json:"args,omitempty"`
	Env     *map[string]string `json:"env,omitempty"`
	URL     *string            `json:"url,omitempty"`
	Headers *map[string]string `json:"headers,omitempty"`
}
