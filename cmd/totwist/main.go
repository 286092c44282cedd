package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"totwist/internal/app"
	"totwist/internal/config"
	"totwist/internal/storage"
	"totwist/internal/ui"
	"totwist/internal/view"
)

var Version = "dev"

type rootOptions struct {
	configPath string
	dbPath     string
	ephemeral  bool
}

// session is everything a command needs once config, log and storage are
// open.
type session struct {
	cfg    config.Config
	blobs  storage.Blobs
	logger *slog.Logger
	close  func()
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "totwist",
		Short:         "to-twist: tasks, priorities and a calendar in the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/totwist/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database file, overrides db_path")
	rootCmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "keep everything in memory for this run")

	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(calCmd(opts))
	rootCmd.AddCommand(purgeCmd(opts))
	return rootCmd
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer s.close()

	state, err := s.state(ctx)
	if err != nil {
		return err
	}
	if err := ui.Run(state, s.cfg.Keys); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func openSession(opts *rootOptions) (*session, error) {
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}

	logger, logFile, err := openLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	slog.SetDefault(logger)

	s := &session{cfg: cfg, logger: logger}
	if opts.ephemeral {
		s.blobs = storage.NewMemory()
		s.close = func() { closeQuietly(logFile) }
		logger.Info("running without persistence")
		return s, nil
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", "path", cfg.DBPath)
	s.blobs = store
	s.close = func() {
		closeQuietly(store)
		closeQuietly(logFile)
	}
	return s, nil
}

// state builds the application state with the routes and view from config.
func (s *session) state(ctx context.Context) (*app.State, error) {
	route, err := view.ParseRoute(s.cfg.DefaultRoute)
	if err != nil {
		return nil, fmt.Errorf("default_route: %w", err)
	}
	mode, err := view.ParseMode(s.cfg.DefaultView)
	if err != nil {
		return nil, fmt.Errorf("default_view: %w", err)
	}
	return app.New(ctx, s.blobs,
		app.WithLogger(s.logger),
		app.WithRoute(route),
		app.WithMode(mode),
	), nil
}

func openLogger(cfg config.Config) (*slog.Logger, io.Closer, error) {
	if cfg.LogPath == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.SlogLevel()})), f, nil
}

func closeQuietly(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		slog.Warn("close failed", "error", err)
	}
}
