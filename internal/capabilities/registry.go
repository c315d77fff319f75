package capabilities

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the provider catalog and builtin tool servers
type Registry struct {
	providers []Provider
	servers   []BuiltinServer
	mu        sync.RWMutex
}

// NewRegistry creates a registry from the embedded YAML files
func NewRegistry() (*Registry, error) {
	r := &Registry{}

	if err := r.loadProviders("config/providers.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load providers: %w", err)
	}
	if err := r.loadServers("config/mcp_servers.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load builtin mcp servers: %w", err)
	}

	return r, nil
}

func (r *Registry) loadProviders(filename string) error {
	var root yaml.Node
	if err := readYAML(filename, &root); err != nil {
		return err
	}

	var doc struct {
		Providers map[string]Provider `yaml:"providers"`
	}
	if err := root.Decode(&doc); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	providersNode := childNode(&root, "providers")
	if providersNode == nil {
		return fmt.Errorf("%s: missing providers", filename)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range orderedKeys(providersNode) {
		p := doc.Providers[id]
		p.ID = id
		r.providers = append(r.providers, p)
	}
	return nil
}

func (r *Registry) loadServers(filename string) error {
	var root yaml.Node
	if err := readYAML(filename, &root); err != nil {
		return err
	}

	var doc struct {
		Servers map[string]BuiltinServer `yaml:"servers"`
	}
	if err := root.Decode(&doc); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	serversNode := childNode(&root, "servers")
	if serversNode == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range orderedKeys(serversNode) {
		s := doc.Servers[id]
		s.ID = id
		r.servers = append(r.servers, s)
	}
	return nil
}

func readYAML(filename string, root *yaml.Node) error {
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, root); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	return nil
}

// GetProvider returns a provider by id
func (r *Registry) GetProvider(id string) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.providers {
		if r.providers[i].ID == id {
			p := r.providers[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("unknown provider: %s", id)
}

// ProviderIDs returns provider ids in catalog order
func (r *Registry) ProviderIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		ids = append(ids, p.ID)
	}
	return ids
}

// ListProviders returns the provider catalog (ordered as defined in YAML)
func (r *Registry) ListProviders() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Provider(nil), r.providers...)
}

// ContextWindow returns the known context window for a provider model,
// falling back to the provider default.
func (r *Registry) ContextWindow(providerID, modelID string) (int, error) {
	p, err := r.GetProvider(providerID)
	if err != nil {
		return 0, err
	}
	for _, m := range p.Models {
		if m.ID == modelID {
			return m.ContextWindow, nil
		}
	}
	return p.DefaultContextWindow, nil
}

// BuiltinServers returns the tool servers shipped with the client
func (r *Registry) BuiltinServers() []BuiltinServer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]BuiltinServer(nil), r.servers...)
}
