// Package cli implements the quicknote command line interface. It is
// the only consumer of the mutation service and the query engine, and
// owns no persisted state of its own.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Shaykeh/ShayQuickNote/internal/config"
	"github.com/Shaykeh/ShayQuickNote/internal/store"
	"github.com/Shaykeh/ShayQuickNote/pkg/notes"
	"github.com/Shaykeh/ShayQuickNote/pkg/prefs"
	"github.com/Shaykeh/ShayQuickNote/pkg/query"
	"github.com/Shaykeh/ShayQuickNote/pkg/tags"
)

type app struct {
	cfg    config.Config
	log    zerolog.Logger
	store  *store.SQLiteStore
	notes  *notes.Service
	engine *query.Engine
	tags   *tags.Aggregate
	prefs  *prefs.Store
	theme  prefs.Theme
}

func (a *app) open() error {
	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		return err
	}

	st, err := store.NewSQLiteStoreWithDSN(a.cfg.DBFile)
	if err != nil {
		return err
	}
	pf, err := prefs.Open(a.cfg.PrefFile)
	if err != nil {
		st.Close()
		return err
	}

	a.store = st
	a.prefs = pf
	theme, err := pf.Theme()
	if err != nil {
		st.Close()
		pf.Close()
		return err
	}
	a.theme = theme
	a.log.Debug().Str("theme", string(theme)).Msg("theme preference loaded")
	a.notes = notes.NewService(st, a.log)
	a.engine = query.NewEngine(st, a.log)
	a.tags = tags.NewAggregate(st, a.log)
	return nil
}

func (a *app) close() {
	if a.engine != nil {
		a.engine.Close()
	}
	if a.tags != nil {
		a.tags.Close()
	}
	if a.prefs != nil {
		a.prefs.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

// New builds the root command with all subcommands attached.
func New() *cobra.Command {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	a := &app{cfg: cfg, log: logger}

	root := &cobra.Command{
		Use:           "quicknote",
		Short:         "Local note-taking: folders, tags, pins, archive, search.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(
		newNoteCommands(a)...,
	)
	root.AddCommand(
		newFolderCommand(a),
		newTagsCommand(a),
		newThemeCommand(a),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := New()
	if err := root.Execute(); err != nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		logger.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}
