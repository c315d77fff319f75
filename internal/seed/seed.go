// Package seed loads sample folders, chat groups, messages and prompts from a
// YAML fixture.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"chatterhub/internal/domain/services"
)

//go:embed fixtures/default.yaml
var defaultFixture []byte

// Fixture is the root of a seed file
type Fixture struct {
	Folders    []FolderFixture    `yaml:"folders"`
	ChatGroups []ChatGroupFixture `yaml:"chat_groups"` // unfiled
	Prompts    []PromptFixture    `yaml:"prompts"`
}

// FolderFixture is a folder with its subfolders and chat groups
type FolderFixture struct {
	Name         string             `yaml:"name"`
	SystemPrompt string             `yaml:"system_prompt"`
	Folders      []FolderFixture    `yaml:"folders"`
	ChatGroups   []ChatGroupFixture `yaml:"chat_groups"`
}

// ChatGroupFixture is a chat group and its messages in order
type ChatGroupFixture struct {
	Name            string           `yaml:"name"`
	OwnSystemPrompt string           `yaml:"own_system_prompt"`
	Model           string           `yaml:"model"`
	Messages        []MessageFixture `yaml:"messages"`
}

// MessageFixture is one message
type MessageFixture struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

// PromptFixture is a saved prompt
type PromptFixture struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Content     string   `yaml:"content"`
	Tags        []string `yaml:"tags"`
}

// Summary counts what a seed run created
type Summary struct {
	Folders    int `json:"folders"`
	ChatGroups int `json:"chat_groups"`
	Messages   int `json:"messages"`
	Prompts    int `json:"prompts"`
}

// Parse decodes a fixture
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// Default returns the embedded sample fixture
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// Seeder writes fixtures through the entity services
type Seeder struct {
	folders    services.FolderService
	chatGroups services.ChatGroupService
	messages   services.MessageService
	prompts    services.PromptService
	logger     *slog.Logger
	now        func() time.Time
}

// NewSeeder creates a new seeder
func NewSeeder(
	folders services.FolderService,
	chatGroups services.ChatGroupService,
	messages services.MessageService,
	prompts services.PromptService,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		folders:    folders,
		chatGroups: chatGroups,
		messages:   messages,
		prompts:    prompts,
		logger:     logger,
		now:        time.Now,
	}
}

// Load creates everything in the fixture. It is not idempotent: running it
// twice creates two copies.
func (s *Seeder) Load(ctx context.Context, f *Fixture) (Summary, error) {
	var sum Summary
	// Messages are spaced one second apart so their order survives the sort
	clock := s.now().UTC()

	for _, folder := range f.Folders {
		if err := s.loadFolder(ctx, folder, nil, &sum, &clock); err != nil {
			return sum, err
		}
	}
	for _, group := range f.ChatGroups {
		if err := s.loadChatGroup(ctx, group, nil, &sum, &clock); err != nil {
			return sum, err
		}
	}
	for _, p := range f.Prompts {
		if _, err := s.prompts.CreatePrompt(ctx, &services.CreatePromptRequest{
			Title:       p.Title,
			Description: p.Description,
			Content:     p.Content,
			Tags:        p.Tags,
		}); err != nil {
			return sum, fmt.Errorf("seed prompt %q: %w", p.Title, err)
		}
		sum.Prompts++
	}

	s.logger.Info("seed complete",
		"folders", sum.Folders,
		"chat_groups", sum.ChatGroups,
		"messages", sum.Messages,
		"prompts", sum.Prompts,
	)
	return sum, nil
}

func (s *Seeder) loadFolder(ctx context.Context, f FolderFixture, parentID *string, sum *Summary, clock *time.Time) error {
	folder, err := s.folders.CreateFolder(ctx, &services.CreateFolderRequest{
		Name:           f.Name,
		ParentFolderID: parentID,
		SystemPrompt:   f.SystemPrompt,
	})
	if err != nil {
		return fmt.Errorf("seed folder %q: %w", f.Name, err)
	}
	sum.Folders++

	for _, child := range f.Folders {
		if err := s.loadFolder(ctx, child, &folder.ID, sum, clock); err != nil {
			return err
		}
	}
	for _, group := range f.ChatGroups {
		if err := s.loadChatGroup(ctx, group, &folder.ID, sum, clock); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) loadChatGroup(ctx context.Context, g ChatGroupFixture, folderID *string, sum *Summary, clock *time.Time) error {
	group, err := s.chatGroups.CreateChatGroup(ctx, &services.CreateChatGroupRequest{
		Name:            g.Name,
		FolderID:        folderID,
		OwnSystemPrompt: g.OwnSystemPrompt,
		Model:           g.Model,
	})
	if err != nil {
		return fmt.Errorf("seed chat group %q: %w", g.Name, err)
	}
	sum.ChatGroups++

	for _, m := range g.Messages {
		createdAt := *clock
		*clock = clock.Add(time.Second)
		if _, err := s.messages.CreateMessage(ctx, &services.CreateMessageRequest{
			ChatGroupID: group.ID,
			Role:        m.Role,
			Content:     m.Content,
			CreatedAt:   &createdAt,
		}); err != nil {
			return fmt.Errorf("seed message in %q: %w", g.Name, err)
		}
		sum.Messages++
	}
	return nil
}
