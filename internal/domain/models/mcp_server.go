package models

import (
	"time"
)

// MCP transports a registration can use
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// MCPServer is a tool-server registration. Only connection metadata and
// activity flags live here; protocol traffic belongs to the tool proxy.
type MCPServer struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Transport string            `json:"transport"`
	Command   string            `json:"command,omitempty"`
	Args      []string          `json:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	URL       string            `json:"url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	IsActive  bool              `json:"is_active"`
	IsBuiltin bool              `json:"is_builtin"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s MCPServer) Key() string { return s.ID }
