package capabilities

import "gopkg.in/yaml.v3"

// ModelInfo describes one known model of a provider
type ModelInfo struct {
	// Model identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName   string `yaml:"display_name" json:"display_name"`
	ContextWindow int    `yaml:"context_window" json:"context_window"`
}

// Provider describes a provider a custom model can point at
type Provider struct {
	// Provider identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName          string      `yaml:"display_name" json:"display_name"`
	DefaultBaseURL       string      `yaml:"default_base_url" json:"default_base_url"`
	RequiresAPIKey       bool        `yaml:"requires_api_key" json:"requires_api_key"`
	DefaultContextWindow int         `yaml:"default_context_window" json:"default_context_window"`
	Models               []ModelInfo `yaml:"-" json:"models"` // Ordered slice, populated by custom unmarshaler
}

// UnmarshalYAML preserves model order from the YAML file
func (p *Provider) UnmarshalYAML(node *yaml.Node) error {
	type plain Provider
	var base plain
	if err := node.Decode(&base); err != nil {
		return err
	}
	*p = Provider(base)

	type modelsOnly struct {
		Models map[string]ModelInfo `yaml:"models"`
	}
	var m modelsOnly
	if err := node.Decode(&m); err != nil {
		return err
	}

	// Mapping node content alternates key, value, key, value...
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "models" {
			continue
		}
		modelsNode := node.Content[i+1]
		for j := 0; j+1 < len(modelsNode.Content); j += 2 {
			modelID := modelsNode.Content[j].Value
			if model, ok := m.Models[modelID]; ok {
				model.ID = modelID
				p.Models = append(p.Models, model)
			}
		}
		break
	}

	return nil
}

// BuiltinServer is a tool server registered on first start
type BuiltinServer struct {
	// Stable registration id (set during loading)
	ID string `yaml:"-" json:"id"`

	Name      string            `yaml:"name" json:"name"`
	Transport string            `yaml:"transport" json:"transport"`
	Command   string            `yaml:"command" json:"command,omitempty"`
	Args      []string          `yaml:"args" json:"args,omitempty"`
	Env       map[string]string `yaml:"env" json:"env,omitempty"`
	URL       string            `yaml:"url" json:"url,omitempty"`
	Active    bool              `yaml:"active" json:"active"`
}

// orderedKeys returns the keys of a YAML mapping node in file order
func orderedKeys(node *yaml.Node) []string {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	var keys []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

// childNode returns the value node of key in a mapping node
func childNode(node *yaml.Node, key string) *yaml.Node {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
