package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"chatterhub/internal/app"
	"chatterhub/internal/config"
)

// storeFlags override the environment's storage settings
type storeFlags struct {
	Driver     string
	SQLitePath string
	Debug      bool
}

func (f *storeFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Driver, "driver", "", "storage driver (sqlite, postgres, memory); defaults to DB_DRIVER")
	fs.StringVar(&f.SQLitePath, "sqlite-path", "", "SQLite database file; defaults to SQLITE_PATH")
	fs.BoolVar(&f.Debug, "debug", false, "log at debug level")
}

// session is the opened application shared by one command run
type session struct {
	flags storeFlags
	app   *app.App
	close func()
}

func newRootCommand(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:           "chatterctl",
		Short:         "Inspect and seed a chatterhub store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd)
		},
	}
	s.flags.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newSeedCommand(s),
		newResolveCommand(s),
		newAffectedCommand(s),
		newAncestryCommand(s),
		newConversationCommand(s),
		newProbeCommand(s),
		newQueriesCommand(s),
		newWatchCommand(s),
	)
	return root
}

func (s *session) open(cmd *cobra.Command) error {
	cfg := config.Load()
	if s.flags.Driver != "" {
		cfg.DBDriver = s.flags.Driver
	}
	if s.flags.SQLitePath != "" {
		cfg.SQLitePath = s.flags.SQLitePath
	}
	// Logs go to stderr so stdout stays machine-readable
	level := slog.LevelWarn
	if s.flags.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a, err := app.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	s.app = a
	s.close = func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}
	return nil
}

func (s *session) shutdown() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
