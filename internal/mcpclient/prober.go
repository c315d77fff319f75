// Package mcpclient checks that a tool-server registration is reachable by
// connecting to it and listing its tools. Tool invocation is not done here.
package mcpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"chatterhub/internal/domain/models"
)

// ErrUnsupportedTransport is returned for registrations with an unknown transport
var ErrUnsupportedTransport = errors.New("unsupported mcp transport")

// Tool is one tool advertised by a server
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProbeResult summarizes a successful connection
type ProbeResult struct {
	ServerID        string        `json:"server_id"`
	ServerName      string        `json:"server_name"`
	ProtocolVersion string        `json:"protocol_version"`
	Implementation  string        `json:"implementation"`
	Tools           []Tool        `json:"tools"`
	Elapsed         time.Duration `json:"elapsed"`
}

// Prober connects to registered servers
type Prober struct {
	timeout    time.Duration
	clientName string
	logger     *slog.Logger
}

// NewProber creates a prober. Each probe is bounded by timeout.
func NewProber(timeout time.Duration, clientName string, logger *slog.Logger) *Prober {
	return &Prober{
		timeout:    timeout,
		clientName: clientName,
		logger:     logger,
	}
}

// Probe connects to the server, performs the initialize handshake and lists its tools
func (p *Prober) Probe(ctx context.Context, server models.MCPServer) (*ProbeResult, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	c, err := p.connect(ctx, server)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	initResult, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    p.clientName,
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize %s: %w", server.Name, err)
	}

	toolsResult, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools of %s: %w", server.Name, err)
	}

	tools := make([]Tool, 0, len(toolsResult.Tools))
	for _, t := range toolsResult.Tools {
		tools = append(tools, Tool{Name: t.Name, Description: t.Description})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	result := &ProbeResult{
		ServerID:        server.ID,
		ServerName:      server.Name,
		ProtocolVersion: initResult.ProtocolVersion,
		Implementation:  fmt.Sprintf("%s %s", initResult.ServerInfo.Name, initResult.ServerInfo.Version),
		Tools:           tools,
		Elapsed:         time.Since(start),
	}

	p.logger.Info("mcp server probed",
		"id", server.ID,
		"name", server.Name,
		"transport", server.Transport,
		"tools", len(tools),
		"elapsed", result.Elapsed,
	)
	return result, nil
}

func (p *Prober) connect(ctx context.Context, server models.MCPServer) (*client.Client, error) {
	switch server.Transport {
	case models.TransportStdio:
		// The stdio client starts the subprocess itself
		c, err := client.NewStdioMCPClient(server.Command, envList(server.Env), server.Args...)
		if err != nil {
			return nil, fmt.Errorf("start %s: %w", server.Name, err)
		}
		return c, nil

	case models.TransportSSE:
		c, err := client.NewSSEMCPClient(server.URL, transport.WithHeaders(server.Headers))
		if err != nil {
			return nil, fmt.Errorf("create sse client for %s: %w", server.Name, err)
		}
		return start(ctx, c, server)

	case models.TransportHTTP:
		c, err := client.NewStreamableHttpClient(server.URL, transport.WithHTTPHeaders(server.Headers))
		if err != nil {
			return nil, fmt.Errorf("create http client for %s: %w", server.Name, err)
		}
		return start(ctx, c, server)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTransport, server.Transport)
	}
}

func start(ctx context.Context, c *client.Client, server models.MCPServer) (*client.Client, error) {
	if err := c.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("connect %s: %w", server.Name, err)
	}
	return c, nil
}

// envList renders env as sorted KEY=VALUE pairs
func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
