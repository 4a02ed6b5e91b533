package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/lingo/middlewares"
	"github.com/dmitrymomot/lingo/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "lingod:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, logger.WithExtractors(
		middlewares.RequestIDExtractor(),
		middlewares.LocaleExtractor(),
	))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}

	return serve(ctx, a)
}

// serve runs the HTTP server and the background workers until ctx is
// done, then shuts everything down within the configured timeout.
func serve(ctx context.Context, a *app) error {
	server := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return errors.Join(err, a.shutdown(context.Background()))
	}

	workers, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	done := a.startWorkers(workers)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	errs := []error{serveErr}
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	stopWorkers()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		errs = append(errs, shutdownCtx.Err())
	}

	errs = append(errs, a.shutdown(shutdownCtx))
	if err := errors.Join(errs...); err != nil {
		a.log.Error("shutdown completed with errors", slog.Any("error", err))
		return err
	}

	a.log.Info("shutdown completed")
	return nil
}
