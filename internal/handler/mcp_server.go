package handler

import (
	"context"
	"log/slog"
	"net/http"

	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/httputil"
	"chatterhub/internal/mcpclient"
)

// Prober checks a registration's connectivity
type Prober interface {
	Probe(ctx context.Context, server models.MCPServer) (*mcpclient.ProbeResult, error)
}

// MCPServerHandler handles tool-server registration HTTP requests
type MCPServerHandler struct {
	servers services.MCPServerService
	prober  Prober
	logger  *slog.Logger
}

// NewMCPServerHandler creates a new MCP server handler
func NewMCPServerHandler(servers services.MCPServerService, prober Prober, logger *slog.Logger) *MCPServerHandler {
	return &MCPServerHandler{
		servers: servers,
		prober:  prober,
		logger:  logger,
	}
}

// ListMCPServers returns registrations; ?active=true limits to active ones
// GET /api/mcp-servers
func (h *MCPServerHandler) ListMCPServers(w http.ResponseWriter, r *http.Request) {
	list := h.servers.ListMCPServers
	if r.URL.Query().Get("active") == "true" {
		list = h.servers.ListActiveMCPServers
	}

	servers, err := list(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, servers)
}

// CreateMCPServer registers a tool server
// POST /api/mcp-servers
func (h *MCPServerHandler) CreateMCPServer(w http.ResponseWriter, r *http.Request) {
	var req services.CreateMCPServerRequest
	if !parseBody(w, r, &req) {
		return
	}

	server, err := h.servers.CreateMCPServer(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, server)
}

// GetMCPServer returns one registration
// GET /api/mcp-servers/{id}
func (h *MCPServerHandler) GetMCPServer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "MCP server")
	if !ok {
		return
	}

	server, err := h.servers.GetMCPServer(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, server, "mcp server")
}

// UpdateMCPServer edits a registration
// PATCH /api/mcp-servers/{id}
func (h *MCPServerHandler) UpdateMCPServer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "MCP server")
	if !ok {
		return
	}

	var req services.UpdateMCPServerRequest
	if !parseBody(w, r, &req) {
		return
	}

	server, err := h.servers.UpdateMCPServer(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondFound(w, server, "mcp server")
}

// DeleteMCPServer removes a registration; builtin ones are kept
// DELETE /api/mcp-servers/{id}
func (h *MCPServerHandler) DeleteMCPServer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "MCP server")
	if !ok {
		return
	}

	if err := h.servers.DeleteMCPServer(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleActive flips the active flag
// POST /api/mcp-servers/{id}/toggle
func (h *MCPServerHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "MCP server")
	if !ok {
		return
	}

	if err := h.servers.ToggleActive(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Probe connects to the server and lists its tools
// POST /api/mcp-servers/{id}/probe
func (h *MCPServerHandler) Probe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "MCP server")
	if !ok {
		return
	}

	server, err := h.servers.GetMCPServer(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	if server == nil {
		httputil.RespondError(w, http.StatusNotFound, "mcp server not found")
		return
	}

	result, err := h.prober.Probe(r.Context(), *server)
	if err != nil {
		h.logger.Warn("mcp probe failed", "id", id, "error", err)
		httputil.RespondErrorWithExtras(w, http.StatusBadGateway, err.Error(), map[string]interface{}{
			"server_id": id,
			"transport": server.Transport,
		})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}
