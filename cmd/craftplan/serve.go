package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/craftplan/internal/db"
	"github.com/udisondev/craftplan/internal/resolver"
	"github.com/udisondev/craftplan/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var reloadEvery time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a, reloadEvery)
		},
	}
	cmd.Flags().DurationVar(&reloadEvery, "reload-interval", 0, "reload datasets periodically (0 disables)")
	return cmd
}

func runServe(ctx context.Context, a *app, reloadEvery time.Duration) error {
	if a.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// fail fast on a broken data directory
	if _, err := a.registry.Snapshot(ctx); err != nil {
		return err
	}

	planCfg, err := a.cfg.Plan()
	if err != nil {
		return err
	}

	var opts []server.Option
	if a.cfg.Database.Enabled {
		database, err := a.openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if _, err := db.RunMigrations(ctx, a.cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		opts = append(opts, server.WithPlanStore(database.Plans()))
	}

	srv := server.New(a.registry, a.cfg.ResolverOptions(), planCfg, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, a.cfg.Server.Addr())
	})
	if reloadEvery > 0 {
		g.Go(func() error {
			reloadLoop(gctx, a.registry, reloadEvery)
			return nil
		})
	}
	return g.Wait()
}

// reloadLoop reloads datasets every interval until ctx is done. A failed
// reload is logged and the previous snapshot keeps serving.
func reloadLoop(ctx context.Context, reg *resolver.Registry, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changed, err := reg.Reload(ctx)
			if err != nil {
				slog.Error("periodic dataset reload failed", "err", err)
				continue
			}
			if changed {
				slog.Info("datasets reloaded", "dir", reg.Dir())
			}
		}
	}
}
