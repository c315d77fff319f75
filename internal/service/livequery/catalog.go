// Package livequery names the standing queries the UI can subscribe to.
package livequery

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"chatterhub/internal/domain"
	"chatterhub/internal/domain/models"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/domain/services"
	"chatterhub/internal/live"
	"chatterhub/internal/service/entity"
	"chatterhub/internal/store"
)

// definition describes one named query
type definition struct {
	params  []string // required query parameters
	watches []repositories.Collection
	build   func(args url.Values) live.QueryFunc[any]
}

// Catalog builds live subscriptions by name
type Catalog struct {
	defs map[string]definition
}

// NewCatalog creates the catalog of live queries
func NewCatalog(resolver services.SystemPromptResolver, folders services.FolderService) *Catalog {
	c := &Catalog{defs: map[string]definition{}}

	c.defs["prompts"] = listAll[models.Prompt](repositories.Prompts)
	c.defs["folders"] = listAll[models.Folder](repositories.Folders)
	c.defs["chat_groups"] = listAll[models.ChatGroup](repositories.ChatGroups)
	c.defs["custom_models"] = listAll[models.CustomModel](repositories.CustomModels)
	c.defs["mcp_servers"] = listAll[models.MCPServer](repositories.MCPServers)

	c.defs["messages"] = definition{
		params:  []string{"chat_group_id"},
		watches: []repositories.Collection{repositories.Messages},
		build: func(args url.Values) live.QueryFunc[any] {
			id := args.Get("chat_group_id")
			return func(ctx context.Context, s *store.Store) (any, error) {
				return entity.ListMessages(ctx, s, id)
			}
		},
	}

	c.defs["folder_tree"] = definition{
		watches: []repositories.Collection{repositories.Folders, repositories.ChatGroups},
		build: func(url.Values) live.QueryFunc[any] {
			return func(ctx context.Context, _ *store.Store) (any, error) {
				return folders.Tree(ctx)
			}
		},
	}

	c.defs["effective_prompt"] = definition{
		params:  []string{"chat_group_id"},
		watches: []repositories.Collection{repositories.Folders, repositories.ChatGroups},
		build: func(args url.Values) live.QueryFunc[any] {
			id := args.Get("chat_group_id")
			return func(ctx context.Context, _ *store.Store) (any, error) {
				return resolver.EffectivePrompt(ctx, id)
			}
		},
	}

	c.defs["affected"] = definition{
		params:  []string{"folder_id"},
		watches: []repositories.Collection{repositories.Folders, repositories.ChatGroups},
		build: func(args url.Values) live.QueryFunc[any] {
			id := args.Get("folder_id")
			return func(ctx context.Context, _ *store.Store) (any, error) {
				return resolver.AffectedChatGroups(ctx, id)
			}
		},
	}

	c.defs["ancestry"] = definition{
		params:  []string{"chat_group_id"},
		watches: []repositories.Collection{repositories.Folders, repositories.ChatGroups},
		build: func(args url.Values) live.QueryFunc[any] {
			id := args.Get("chat_group_id")
			return func(ctx context.Context, _ *store.Store) (any, error) {
				return resolver.AncestryPath(ctx, id)
			}
		},
	}

	return c
}

func listAll[T any](c repositories.Collection) definition {
	return definition{
		watches: []repositories.Collection{c},
		build: func(url.Values) live.QueryFunc[any] {
			return func(ctx context.Context, s *store.Store) (any, error) {
				return store.All[T](ctx, s, c)
			}
		},
	}
}

// Names lists the available queries in sorted order
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subscribe starts the named query with the given arguments
func (c *Catalog) Subscribe(ctx context.Context, e *live.Engine, name string, args url.Values) (*live.Subscription[any], error) {
	def, ok := c.defs[name]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("unknown live query %q", name)}
	}
	for _, p := range def.params {
		if args.Get(p) == "" {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("live query %q requires %s", name, p)}
		}
	}

	label := name
	if len(def.params) > 0 {
		label = name + "?" + args.Encode()
	}
	return live.Subscribe(ctx, e, label, def.build(args), live.Watching(def.watches...))
}
