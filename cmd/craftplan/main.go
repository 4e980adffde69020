package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/udisondev/craftplan/internal/config"
	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/db"
	"github.com/udisondev/craftplan/internal/resolver"
)

// DefaultConfigPath is used when neither --config nor CRAFTPLAN_CONFIG is set.
const DefaultConfigPath = "config/craftplan.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand, filled before any of them runs.
type app struct {
	configPath string
	dataDir    string

	cfg      config.Config
	registry *resolver.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "craftplan",
		Short: "Match crafting plans against Path of Exile datasets",
		Long: `craftplan annotates crafting steps with bosses, essences, harvest crafts,
bench recipes, mods and crafting simulator entries, and lays out each route
as a risk × budget table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	configPath := DefaultConfigPath
	if p := os.Getenv("CRAFTPLAN_CONFIG"); p != "" {
		configPath = p
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", configPath, "config file (env CRAFTPLAN_CONFIG)")
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "dataset directory (overrides data_dir)")

	cmd.AddCommand(
		newPlanCmd(a),
		newLookupCmd(a),
		newSearchCmd(a),
		newSpawnCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	a.cfg = cfg

	// stdout carries command output
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	n, err := cfg.Normalizer()
	if err != nil {
		return err
	}
	a.registry = resolver.NewRegistry(cfg.DataDir, data.WithNormalizer(n))
	return nil
}

func (a *app) resolver(ctx context.Context) (*resolver.Resolver, error) {
	snap, err := a.registry.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return resolver.New(snap, a.cfg.ResolverOptions()), nil
}

func (a *app) openDB(ctx context.Context) (*db.DB, error) {
	if !a.cfg.Database.Enabled {
		return nil, fmt.Errorf("plan storage is disabled: set database.enabled in %s", a.configPath)
	}
	database, err := db.New(ctx, a.cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	slog.Info("database connected")
	return database, nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
