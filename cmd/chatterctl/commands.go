package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chatterhub/internal/domain"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/seed"
)

func newSeedCommand(s *session) *cobra.Command {
	var file string
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample folders, chat groups, messages and prompts",
		Long: `Load a YAML fixture into the store. Without --file the built-in
sample workspace is loaded. Seeding is not idempotent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := loadFixture(file)
			if err != nil {
				return err
			}
			a := s.app
			if reset {
				if a.Config.Environment == "prod" {
					return errors.New("refusing to clear data in the prod environment")
				}
				for _, c := range repositories.AllCollections {
					n, err := a.Store.Clear(cmd.Context(), c)
					if err != nil {
						return err
					}
					a.Logger.Info("collection cleared", "collection", c, "deleted", n)
				}
			}
			seeder := seed.NewSeeder(a.Folders, a.ChatGroups, a.Messages, a.Prompts, a.Logger)
			sum, err := seeder.Load(cmd.Context(), fixture)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sum)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (YAML)")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete every record before seeding")
	return cmd
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.Parse(data)
}

func newResolveCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <chat-group-id>",
		Short: "Show the effective system prompt of a chat group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := s.app.Resolver.EffectivePrompt(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), eff)
		},
	}
}

func newAffectedCommand(s *session) *cobra.Command {
	var preview string

	cmd := &cobra.Command{
		Use:   "affected <folder-id>",
		Short: "List chat groups whose effective prompt comes from a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("preview") {
				changes, err := s.app.Resolver.PreviewFolderPrompt(cmd.Context(), args[0], preview)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), changes)
			}
			ids, err := s.app.Resolver.AffectedChatGroups(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ids)
		},
	}
	cmd.Flags().StringVar(&preview, "preview", "", "show the groups that would change if the folder prompt were set to this value")
	return cmd
}

func newAncestryCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "ancestry <chat-group-id>",
		Short: "Show the folder path of a chat group, root first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := s.app.Resolver.AncestryPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), path)
		},
	}
}

func newConversationCommand(s *session) *cobra.Command {
	var systemPrompt string

	cmd := &cobra.Command{
		Use:   "conversation <chat-group-id>",
		Short: "Print the role/content list sent to a model for a chat group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var override *string
			if cmd.Flags().Changed("system-prompt") {
				override = &systemPrompt
			}
			msgs, err := s.app.Assembler.Assemble(cmd.Context(), args[0], override)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), msgs)
		},
	}
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "use this system prompt instead of the resolved one (empty omits it)")
	return cmd
}

func newProbeCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <mcp-server-id>",
		Short: "Connect to a registered MCP server and list its tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := s.app.MCPServers.GetMCPServer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if server == nil {
				return &domain.NotFoundError{Message: fmt.Sprintf("mcp server not found: %s", args[0])}
			}
			result, err := s.app.Prober.Probe(cmd.Context(), *server)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newQueriesCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "queries",
		Short: "List the live queries available to subscribers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), s.app.Catalog.Names())
		},
	}
}

func newWatchCommand(s *session) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "watch <query>",
		Short: "Subscribe to a live query and print every delivered result",
		Long: `Subscribe to a live query and print each result as it changes.
Runs until interrupted. Pass query parameters as --param key=value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseParams(params)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sub, err := s.app.Catalog.Subscribe(ctx, s.app.Engine, args[0], values)
			if err != nil {
				return err
			}
			defer sub.Close()

			// The first result is already waiting on Updates
			out := cmd.OutOrStdout()
			for {
				select {
				case <-ctx.Done():
					return nil
				case v, ok := <-sub.Updates():
					if !ok {
						return nil
					}
					if err := printJSON(out, v); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	return cmd
}

func parseParams(params []string) (url.Values, error) {
	values := url.Values{}
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, errors.New("query parameter must be key=value: " + p)
		}
		values.Add(key, value)
	}
	return values, nil
}
