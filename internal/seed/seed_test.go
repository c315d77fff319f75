package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterhub/internal/domain/models"
	"chatterhub/internal/repository/memory"
	"chatterhub/internal/service/entity"
	"chatterhub/internal/service/sysprompt"
	"chatterhub/internal/store"
)

func TestLoadDefault(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.New(memory.NewDriver(), logger)

	folders := entity.NewFolderService(s, logger)
	groups := entity.NewChatGroupService(s, logger)
	messages := entity.NewMessageService(s, logger)
	prompts := entity.NewPromptService(s, logger)

	fixture, err := Default()
	require.NoError(t, err)

	sum, err := NewSeeder(folders, groups, messages, prompts, logger).Load(ctx, fixture)
	require.NoError(t, err)
	assert.Equal(t, Summary{Folders: 4, ChatGroups: 4, Messages: 4, Prompts: 2}, sum)

	all, err := groups.ListChatGroups(ctx)
	require.NoError(t, err)
	byName := map[string]models.ChatGroup{}
	for _, g := range all {
		byName[g.Name] = g
	}
	require.Len(t, byName, 4)

	resolver := sysprompt.NewResolver(s, logger)

	tests := []struct {
		group  string
		source models.PromptSource
		prompt string
	}{
		{"Character arcs", models.PromptSourceFolder, "You are a patient writing coach. Prefer concrete suggestions."},
		{"API guide review", models.PromptSourceFolder, "You review technical documentation for clarity and accuracy."},
		{"Paper notes", models.PromptSourceChat, "Summarize in bullet points and cite page numbers."},
		{"Scratchpad", models.PromptSourceNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			ep, err := resolver.EffectivePrompt(ctx, byName[tt.group].ID)
			require.NoError(t, err)
			assert.Equal(t, tt.source, ep.Source)
			assert.Equal(t, tt.prompt, ep.Prompt)
		})
	}

	msgs, err := messages.ListByChatGroup(ctx, byName["Character arcs"].ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte("prompts:\n  - title: One\n    content: body\n"))
	require.NoError(t, err)
	require.Len(t, f.Prompts, 1)
	assert.Equal(t, "One", f.Prompts[0].Title)

	_, err = Parse([]byte("folders: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_StopsOnInvalidEntry(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.New(memory.NewDriver(), logger)

	seeder := NewSeeder(
		entity.NewFolderService(s, logger),
		entity.NewChatGroupService(s, logger),
		entity.NewMessageService(s, logger),
		entity.NewPromptService(s, logger),
		logger,
	)

	sum, err := seeder.Load(ctx, &Fixture{
		Folders: []FolderFixture{{Name: "ok"}, {Name: ""}},
	})
	assert.Error(t, err)
	assert.Equal(t, 1, sum.Folders)
}
