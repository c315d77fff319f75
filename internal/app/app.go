// Package app wires the store, live engine and services together for the
// server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"chatterhub/internal/capabilities"
	"chatterhub/internal/config"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/handler"
	"chatterhub/internal/handler/sse"
	"chatterhub/internal/live"
	"chatterhub/internal/mcpclient"
	"chatterhub/internal/service/conversation"
	"chatterhub/internal/service/entity"
	"chatterhub/internal/service/livequery"
	"chatterhub/internal/service/sysprompt"
	"chatterhub/internal/store"
)

// App holds every long-lived component
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *store.Store
	Engine   *live.Engine
	Registry *capabilities.Registry

	Folders      services.FolderService
	ChatGroups   services.ChatGroupService
	Messages     services.MessageService
	Prompts      services.PromptService
	CustomModels services.CustomModelService
	MCPServers   services.MCPServerService
	Images       services.ImageService

	Resolver  *sysprompt.Resolver
	Assembler *conversation.Assembler
	Catalog   *livequery.Catalog
	Prober    *mcpclient.Prober
}

// Open opens the configured store and builds the services over it
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	s, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a, err := New(s, cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	return a, nil
}

// New builds the services over an already opened store
func New(s *store.Store, cfg *config.Config, logger *slog.Logger) (*App, error) {
	registry, err := capabilities.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load capability registry: %w", err)
	}
	logger.Info("capability registry initialized", "providers", len(registry.ListProviders()))

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Store:    s,
		Registry: registry,
		Engine:   live.NewEngine(s, live.WithTick(cfg.LiveTickInterval), live.WithLogger(logger)),

		Folders:      entity.NewFolderService(s, logger),
		ChatGroups:   entity.NewChatGroupService(s, logger),
		Messages:     entity.NewMessageService(s, logger),
		Prompts:      entity.NewPromptService(s, logger),
		CustomModels: entity.NewCustomModelService(s, registry, logger),
		MCPServers:   entity.NewMCPServerService(s, registry, logger),
		Images:       entity.NewImageService(s, logger),

		Resolver: sysprompt.NewResolver(s, logger),
		Prober:   mcpclient.NewProber(cfg.MCPProbeTimeout, "chatterhub", logger),
	}
	a.Assembler = conversation.NewAssembler(s, a.Resolver, logger)
	a.Catalog = livequery.NewCatalog(a.Resolver, a.Folders)

	return a, nil
}

// Handlers builds the HTTP handlers
func (a *App) Handlers() *handler.Handlers {
	sseConfig := sse.DefaultConfig()
	if a.Config.SSEKeepAlive > 0 {
		sseConfig.KeepAliveInterval = a.Config.SSEKeepAlive
	}

	return &handler.Handlers{
		Folders:      handler.NewFolderHandler(a.Folders, a.Resolver, a.Logger),
		ChatGroups:   handler.NewChatGroupHandler(a.ChatGroups, a.Messages, a.Images, a.Resolver, a.Assembler, a.Logger),
		Messages:     handler.NewMessageHandler(a.Messages, a.Logger),
		Prompts:      handler.NewPromptHandler(a.Prompts, a.Logger),
		CustomModels: handler.NewCustomModelHandler(a.CustomModels, a.Registry, a.Logger),
		MCPServers:   handler.NewMCPServerHandler(a.MCPServers, a.Prober, a.Logger),
		Images:       handler.NewImageHandler(a.Images, a.Logger),
		Live:         handler.NewLiveHandler(a.Engine, a.Catalog, sseConfig, a.Logger),
	}
}

// NewHTTPServer builds the API server. Shutdown closes the live engine first
// so open SSE streams see their subscriptions end and return.
func (a *App) NewHTTPServer(addr string, h http.Handler) *http.Server {
	server := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}
	server.RegisterOnShutdown(a.Engine.Close)
	return server
}

// Close stops the live engine and closes the store
func (a *App) Close() error {
	a.Engine.Close()
	return a.Store.Close()
}
