package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/Kush-Singh-26/corsfs/internal/config"
)

// Run starts the server described by args and serves until ctx is
// cancelled. Configuration and bind failures are returned immediately.
func Run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv, err := New(cfg, WithLogger(logger))
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}
	fmt.Println("Press Ctrl+C to stop")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Wait)
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() == nil {
			// Serve failed on its own; nothing left to shut down.
			return nil
		}
		fmt.Println("\n🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	srv.Metrics().Print()
	fmt.Println("✅ Server stopped.")
	return nil
}
