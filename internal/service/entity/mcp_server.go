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
	"chatterhub/internal/domain"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/store"
)

type mcpServerService struct {
	base
	registry *capabilities.Registry
}

// NewMCPServerService creates a tool-server registration service
func NewMCPServerService(s *store.Store, registry *capabilities.Registry, logger *slog.Logger, opts ...Option) services.MCPServerService {
	return &mcpServerService{
		base:     newBase(s, logger, opts),
		registry: registry,
	}
}

func (s *mcpServerService) CreateMCPServer(ctx context.Context, req *services.CreateMCPServerRequest) (*models.MCPServer, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateServerShape(req.Name, req.Transport, req.Command, req.URL); err != nil {
		return nil, invalid(err)
	}
	if err := s.checkNameFree(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	now := s.timestamp()
	server := &models.MCPServer{
		ID:        s.newID(),
		Name:      req.Name,
		Transport: req.Transport,
		Command:   req.Command,
		Args:      req.Args,
		Env:       req.Env,
		URL:       req.URL,
		Headers:   req.Headers,
		IsActive:  req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Put(ctx, s.store, repositories.MCPServers, *server); err != nil {
		return nil, fmt.Errorf("failed to create mcp server: %w", err)
	}

	s.logger.Info("mcp server registered",
		"id", server.ID,
		"name", server.Name,
		"transport", server.Transport,
	)
	return server, nil
}

func (s *mcpServerService) GetMCPServer(ctx context.Context, id string) (*models.MCPServer, error) {
	return store.Get[models.MCPServer](ctx, s.store, repositories.MCPServers, id)
}

func (s *mcpServerService) ListMCPServers(ctx context.Context) ([]models.MCPServer, error) {
	return store.All[models.MCPServer](ctx, s.store, repositories.MCPServers)
}

func (s *mcpServerService) ListActiveMCPServers(ctx context.Context) ([]models.MCPServer, error) {
	return store.Query[models.MCPServer](ctx, s.store, repositories.MCPServers, repositories.Where("is_active", true), nil)
}

func (s *mcpServerService) UpdateMCPServer(ctx context.Context, id string, req *services.UpdateMCPServerRequest) (*models.MCPServer, error) {
	server, err := store.Get[models.MCPServer](ctx, s.store, repositories.MCPServers, id)
	if err != nil {
		return nil, err
	}
	if server == nil {
		s.logger.Debug("update of missing mcp server ignored", "id", id)
		return nil, nil
	}

	if req.Name != nil {
		server.Name = strings.TrimSpace(*req.Name)
	}
	if req.Command != nil {
		server.Command = *req.Command
	}
	if req.Args != nil {
		server.Args = *req.Args
	}
	if req.Env != nil {
		server.Env = *req.Env
	}
	if req.URL != nil {
		server.URL = *req.URL
	}
	if req.Headers != nil {
		server.Headers = *req.Headers
	}

	// Validate the merged record so a patch cannot strip a required connection field
	if err := validateServerShape(server.Name, server.Transport, server.Command, server.URL); err != nil {
		return nil, invalid(err)
	}
	if req.Name != nil {
		if err := s.checkNameFree(ctx, server.Name, server.ID); err != nil {
			return nil, err
		}
	}

	server.UpdatedAt = s.timestamp()
	if err := store.Put(ctx, s.store, repositories.MCPServers, *server); err != nil {
		return nil, fmt.Errorf("failed to update mcp server: %w", err)
	}

	s.logger.Info("mcp server updated", "id", server.ID, "name", server.Name)
	return server, nil
}

// DeleteMCPServer removes a registration. Builtin registrations stay; they can only be deactivated.
func (s *mcpServerService) DeleteMCPServer(ctx context.Context, id string) error {
	server, err := store.Get[models.MCPServer](ctx, s.store, repositories.MCPServers, id)
	if err != nil {
		return err
	}
	if server == nil {
		return nil
	}
	if server.IsBuiltin {
		s.logger.Warn("refusing to delete builtin mcp server", "id", id, "name", server.Name)
		return nil
	}

	if err := s.store.Delete(ctx, repositories.MCPServers, id); err != nil {
		return fmt.Errorf("failed to delete mcp server: %w", err)
	}
	s.logger.Info("mcp server deleted", "id", id)
	return nil
}

func (s *mcpServerService) ToggleActive(ctx context.Context, id string) error {
	server, err := store.Get[models.MCPServer](ctx, s.store, repositories.MCPServers, id)
	if err != nil {
		return err
	}
	if server == nil {
		return nil
	}

	server.IsActive = !server.IsActive
	server.UpdatedAt = s.timestamp()
	return store.Put(ctx, s.store, repositories.MCPServers, *server)
}

// EnsureBuiltins registers catalog servers that are not stored yet. Existing
// registrations keep their user edits and activity flag.
func (s *mcpServerService) EnsureBuiltins(ctx context.Context) (int, error) {
	added := 0
	for _, b := range s.registry.BuiltinServers() {
		existing, err := store.Get[models.MCPServer](ctx, s.store, repositories.MCPServers, b.ID)
		if err != nil {
			return added, err
		}
		if existing != nil {
			continue
		}

		now := s.timestamp()
		server := models.MCPServer{
			ID:        b.ID,
			Name:      b.Name,
			Transport: b.Transport,
			Command:   b.Command,
			Args:      b.Args,
			Env:       b.Env,
			URL:       b.URL,
			IsActive:  b.Active,
			IsBuiltin: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.Put(ctx, s.store, repositories.MCPServers, server); err != nil {
			return added, fmt.Errorf("failed to register builtin mcp server %s: %w", b.ID, err)
		}
		added++
	}

	if added > 0 {
		s.logger.Info("builtin mcp servers registered", "count", added)
	}
	return added, nil
}

// checkNameFree rejects a name already used by another registration; the
// tool proxy namespaces tools by server name
func (s *mcpServerService) checkNameFree(ctx context.Context, name, selfID string) error {
	taken, err := store.Query[models.MCPServer](ctx, s.store, repositories.MCPServers, repositories.Filter{}, func(m *models.MCPServer) bool {
		return m.ID != selfID && strings.EqualFold(m.Name, name)
	})
	if err != nil {
		return fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	if len(taken) > 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("an mcp server named %q already exists", name),
			ResourceType: "mcp_server",
			ResourceID:   taken[0].ID,
		}
	}
	return nil
}

func validateServerShape(name, transport, command, url string) error {
	return validation.Errors{
		"name": validation.Validate(name, validation.Required, validation.Length(1, config.MaxServerNameLength)),
		"transport": validation.Validate(transport,
			validation.Required,
			validation.In(models.TransportStdio, models.TransportSSE, models.TransportHTTP),
		),
		"command": validation.Validate(command, validation.When(transport == models.TransportStdio, validation.Required)),
		"url":     validation.Validate(url, validation.When(transport != models.TransportStdio, validation.Required, is.URL)),
	}.Filter()
}
