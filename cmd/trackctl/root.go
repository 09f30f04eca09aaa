package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Atul17-std/pokemon-tracker/internal/curriculum"
	"github.com/Atul17-std/pokemon-tracker/internal/platform/config"
	"github.com/Atul17-std/pokemon-tracker/internal/tracker"
)

type options struct {
	dbPath     string
	profileID  string
	catalogDir string
	catalogID  string
	verbose    bool
}

// session is an opened tracker over the local SQLite record.
type session struct {
	tracker *tracker.Tracker
	catalog curriculum.Catalog
	store   *tracker.SQLiteStore
}

func (s *session) Close() error {
	return s.store.Close()
}

func newRootCmd() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		cfg = &config.Config{}
	}
	opts := &options{}

	root := &cobra.Command{
		Use:           "trackctl",
		Short:         "Track semester grades and training progress",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", cfg.Storage.SQLitePath, "SQLite database file")
	root.PersistentFlags().StringVar(&opts.profileID, "profile", cfg.ProfileID, "profile to operate on")
	root.PersistentFlags().StringVar(&opts.catalogDir, "catalog-dir", cfg.Curriculum.Path, "directory of catalog YAML files (bundled catalog when empty)")
	root.PersistentFlags().StringVar(&opts.catalogID, "catalog", cfg.Curriculum.CatalogID, "catalog id")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(
		newSummaryCmd(opts),
		newAddCmd(opts),
		newToggleCmd(opts),
		newProfileCmd(opts),
		newCatalogCmd(opts),
		newExportCmd(opts),
	)
	return root
}

func openSession(ctx context.Context, opts *options) (*session, error) {
	catalog, err := curriculum.Resolve(opts.catalogDir, opts.catalogID)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	store, err := tracker.OpenSQLiteStore(opts.dbPath)
	if err != nil {
		return nil, err
	}
	tr, err := tracker.New(ctx, opts.profileID, catalog.Catalog, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &session{tracker: tr, catalog: catalog, store: store}, nil
}

func printNotices(cmd *cobra.Command, res tracker.Result) {
	for _, n := range res.Notices {
		fmt.Fprintln(cmd.ErrOrStderr(), "notice:", n)
	}
}
