package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	urfave "github.com/urfave/cli/v3"

	httpLayer "credit-score/http"
)

var serveCmd = &urfave.Command{
	Name:  "serve",
	Usage: "Start the scoring HTTP API",
	Flags: []urfave.Flag{
		&urfave.StringFlag{
			Name:  "address",
			Usage: "Overrides server.address",
		},
	},
	Action: cmdServe,
}

func cmdServe(ctx context.Context, cmd *urfave.Command) error {
	cfg, err := configFrom(ctx)
	if err != nil {
		return err
	}
	if addr := cmd.String("address"); addr != "" {
		cfg.Server.Address = addr
	}

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	var rateLimiter *httpLayer.RateLimiter
	if rl := cfg.Server.RateLimit; rl.Capacity > 0 {
		rateLimiter = httpLayer.NewRateLimiter(rl.Capacity, rl.Window)
		defer rateLimiter.Stop()
	}

	info := httpLayer.ModelInfo{Trees: len(p.forest.Trees), Features: p.forest.Features}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      httpLayer.NewRouter(p.service, rateLimiter, info),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during server shutdown", "error", err)
		return err
	}

	slog.Info("server exited")
	return nil
}
