// Package sysprompt resolves system prompts inherited through the folder tree.
//
// Every query reads current store state; nothing is cached between calls.
// Walks stop at a root, at a reference to a missing folder, or when a folder
// is revisited, so a corrupted parent cycle resolves to no prompt instead of
// looping.
package sysprompt

import (
	"context"
	"fmt"
	"log/slog"

	"chatterhub/internal/domain"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/store"
)

// folderLookup returns a folder or nil when it does not exist
type folderLookup func(ctx context.Context, id string) (*models.Folder, error)

// Resolver implements services.SystemPromptResolver over a store
type Resolver struct {
	store  *store.Store
	logger *slog.Logger
}

var _ services.SystemPromptResolver = (*Resolver)(nil)

// NewResolver creates a resolver reading from s
func NewResolver(s *store.Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: s, logger: logger}
}

// EffectivePrompt resolves the prompt of a chat group. Storage faults are
// logged and degrade to no prompt; the error is still returned.
func (r *Resolver) EffectivePrompt(ctx context.Context, chatGroupID string) (models.EffectivePrompt, error) {
	group, err := store.Get[models.ChatGroup](ctx, r.store, repositories.ChatGroups, chatGroupID)
	if err != nil {
		return r.degrade("load chat group", chatGroupID, err)
	}
	if group == nil {
		return models.NoPrompt(), nil
	}

	ep, err := r.resolveGroup(ctx, *group, r.storeLookup)
	if err != nil {
		return r.degrade("resolve chat group", chatGroupID, err)
	}
	return ep, nil
}

// InheritedForFolder resolves what a folder inherits, ignoring its own prompt
func (r *Resolver) InheritedForFolder(ctx context.Context, folderID string) (models.EffectivePrompt, error) {
	folder, err := store.Get[models.Folder](ctx, r.store, repositories.Folders, folderID)
	if err != nil {
		return r.degrade("load folder", folderID, err)
	}
	if folder == nil || folder.ParentFolderID == nil {
		return models.NoPrompt(), nil
	}

	ep, err := r.walk(ctx, *folder.ParentFolderID, map[string]bool{folder.ID: true}, r.storeLookup)
	if err != nil {
		return r.degrade("resolve folder", folderID, err)
	}
	return ep, nil
}

// AffectedChatGroups lists, in creation order, the chat groups whose effective
// prompt currently comes from folderID
func (r *Resolver) AffectedChatGroups(ctx context.Context, folderID string) ([]string, error) {
	groups, lookup, err := r.snapshot(ctx)
	if err != nil {
		r.logger.Error("failed to load snapshot for affected chat groups", "folder_id", folderID, "error", err)
		return []string{}, err
	}

	affected := []string{}
	for _, g := range groups {
		ep, err := r.resolveGroup(ctx, g, lookup)
		if err != nil {
			return []string{}, err
		}
		if ep.Source == models.PromptSourceFolder && ep.SourceID == folderID {
			affected = append(affected, g.ID)
		}
	}
	return affected, nil
}

// AncestryPath lists the folders above a chat group, root first. A dangling
// reference or a cycle ends the path at the last folder reached.
func (r *Resolver) AncestryPath(ctx context.Context, chatGroupID string) ([]models.FolderRef, error) {
	group, err := store.Get[models.ChatGroup](ctx, r.store, repositories.ChatGroups, chatGroupID)
	if err != nil {
		r.logger.Error("failed to load chat group for ancestry", "chat_group_id", chatGroupID, "error", err)
		return []models.FolderRef{}, err
	}
	if group == nil || group.FolderID == nil {
		return []models.FolderRef{}, nil
	}

	var path []models.FolderRef
	visited := map[string]bool{}
	cur := *group.FolderID
	for {
		if visited[cur] {
			r.logger.Warn("folder cycle in ancestry path", "chat_group_id", chatGroupID, "folder_id", cur)
			break
		}
		visited[cur] = true

		folder, err := store.Get[models.Folder](ctx, r.store, repositories.Folders, cur)
		if err != nil {
			r.logger.Error("failed to load folder for ancestry", "folder_id", cur, "error", err)
			return []models.FolderRef{}, err
		}
		if folder == nil {
			break
		}
		path = append(path, models.FolderRef{ID: folder.ID, Name: folder.Name})
		if folder.ParentFolderID == nil {
			break
		}
		cur = *folder.ParentFolderID
	}

	// Collected leaf first
	out := make([]models.FolderRef, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		out = append(out, path[i])
	}
	return out, nil
}

// PreviewFolderPrompt overlays newPrompt on folderID and reports every chat
// group whose effective prompt would change. A missing folder changes nothing.
func (r *Resolver) PreviewFolderPrompt(ctx context.Context, folderID, newPrompt string) ([]models.PromptChange, error) {
	groups, current, err := r.snapshot(ctx)
	if err != nil {
		r.logger.Error("failed to load snapshot for prompt preview", "folder_id", folderID, "error", err)
		return []models.PromptChange{}, err
	}

	target, err := current(ctx, folderID)
	if err != nil {
		return []models.PromptChange{}, err
	}
	if target == nil {
		return []models.PromptChange{}, nil
	}

	edited := *target
	edited.SystemPrompt = newPrompt
	pending := func(ctx context.Context, id string) (*models.Folder, error) {
		if id == folderID {
			f := edited
			return &f, nil
		}
		return current(ctx, id)
	}

	changes := []models.PromptChange{}
	for _, g := range groups {
		before, err := r.resolveGroup(ctx, g, current)
		if err != nil {
			return []models.PromptChange{}, err
		}
		after, err := r.resolveGroup(ctx, g, pending)
		if err != nil {
			return []models.PromptChange{}, err
		}
		if before != after {
			changes = append(changes, models.PromptChange{ChatGroupID: g.ID, Before: before, After: after})
		}
	}
	return changes, nil
}

// resolveGroup applies the override-then-folders rule to one chat group
func (r *Resolver) resolveGroup(ctx context.Context, g models.ChatGroup, lookup folderLookup) (models.EffectivePrompt, error) {
	if g.OwnSystemPrompt != "" {
		return models.EffectivePrompt{
			Prompt:   g.OwnSystemPrompt,
			Source:   models.PromptSourceChat,
			SourceID: g.ID,
		}, nil
	}
	if g.FolderID == nil {
		return models.NoPrompt(), nil
	}
	return r.walk(ctx, *g.FolderID, map[string]bool{}, lookup)
}

// walk tests start and then each ancestor; the first non-empty prompt wins.
// visited bounds the walk by the number of distinct folders.
func (r *Resolver) walk(ctx context.Context, start string, visited map[string]bool, lookup folderLookup) (models.EffectivePrompt, error) {
	cur := start
	for {
		if visited[cur] {
			r.logger.Warn("folder cycle detected", "folder_id", cur, "error", domain.ErrCycleDetected)
			return models.NoPrompt(), nil
		}
		visited[cur] = true

		folder, err := lookup(ctx, cur)
		if err != nil {
			return models.NoPrompt(), err
		}
		if folder == nil {
			// Dangling reference: treat as no parent
			return models.NoPrompt(), nil
		}
		if folder.SystemPrompt != "" {
			return models.EffectivePrompt{
				Prompt:   folder.SystemPrompt,
				Source:   models.PromptSourceFolder,
				SourceID: folder.ID,
			}, nil
		}
		if folder.ParentFolderID == nil {
			return models.NoPrompt(), nil
		}
		cur = *folder.ParentFolderID
	}
}

func (r *Resolver) storeLookup(ctx context.Context, id string) (*models.Folder, error) {
	return store.Get[models.Folder](ctx, r.store, repositories.Folders, id)
}

// snapshot loads every chat group and an in-memory folder lookup so that
// whole-tree queries read each record once
func (r *Resolver) snapshot(ctx context.Context) ([]models.ChatGroup, folderLookup, error) {
	folders, err := store.All[models.Folder](ctx, r.store, repositories.Folders)
	if err != nil {
		return nil, nil, fmt.Errorf("list folders: %w", err)
	}
	groups, err := store.All[models.ChatGroup](ctx, r.store, repositories.ChatGroups)
	if err != nil {
		return nil, nil, fmt.Errorf("list chat groups: %w", err)
	}

	byID := make(map[string]models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	lookup := func(_ context.Context, id string) (*models.Folder, error) {
		f, ok := byID[id]
		if !ok {
			return nil, nil
		}
		return &f, nil
	}
	return groups, lookup, nil
}

func (r *Resolver) degrade(op, id string, err error) (models.EffectivePrompt, error) {
	r.logger.Error("system prompt resolution failed", "op", op, "id", id, "error", err)
	return models.NoPrompt(), fmt.Errorf("%s %s: %w", op, id, err)
}
