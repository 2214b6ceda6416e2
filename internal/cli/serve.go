package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/grouplog/internal/config"
	"github.com/aretw0/grouplog/pkg/adapters/line"
)

// Serve runs the webhook server until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := line.NewClient(cfg.Line.ChannelAccessToken)
	if err != nil {
		return err
	}
	emitter := line.NewEmitter(client, line.WithEmitterLogger(logger))

	app, err := NewApp(ctx, cfg, emitter, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logger.Warn("Failed to close backends", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			"addr", srv.Addr,
			"store", cfg.Store.Driver,
			"flow_store", cfg.FlowDriver(),
			"lock", cfg.Lock.Mode,
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		attrs := []any{}
		if sc, ok := ctx.(*SignalContext); ok && sc.Signal() != nil {
			attrs = append(attrs, "signal", sc.Signal().String())
		}
		logger.Info("Shutting down", attrs...)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to close server: %w", err)
			}
		}
		logger.Info("Server stopped gracefully")
		return nil
	}
}
