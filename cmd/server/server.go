package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Run starts the scheduler and serves HTTP on the configured port until ctx
// is cancelled or the server fails.
func (app *application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		app.shutdown(context.Background(), nil)
		return fmt.Errorf("failed to listen on port %d: %w", app.config.Server.Port, err)
	}
	return app.serve(ctx, ln)
}

// serve owns ln and always shuts the application down before returning.
func (app *application) serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if app.scheduler != nil {
		if err := app.scheduler.Start(); err != nil {
			_ = ln.Close()
			app.shutdown(context.Background(), nil)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		app.logger.Info("shutdown requested")
	case err, ok := <-errCh:
		if ok {
			app.logger.Error("server failed", "error", err)
			serveErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.shutdown(shutdownCtx, server); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

// shutdown stops components in dependency order: the HTTP server first so no
// new work arrives, then the scheduler (waiting for an in-flight scan), then
// the websocket hub and finally the database.
func (app *application) shutdown(ctx context.Context, server *http.Server) error {
	var shutdownErr error

	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			app.logger.Error("server shutdown failed", "error", err)
			shutdownErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	app.hub.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
		if shutdownErr == nil {
			shutdownErr = fmt.Errorf("failed to close database: %w", err)
		}
	}

	app.logger.Info("shutdown complete")
	return shutdownErr
}
