package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"time-report-go/internal/app"
	"time-report-go/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.NewFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, log)
	stop()

	_ = logger.Sync(log)
	os.Exit(code)
}

// run serves the time-report API until ctx is cancelled or the listener
// fails, then drains requests and releases the database and tracer.
func run(ctx context.Context, log logger.Logger) int {
	log.Info("time-report: starting")

	application, err := app.New(ctx, log)
	if err != nil {
		log.Critical("time-report: init failed", "err", err)
		return 1
	}

	srv := application.HTTPServer()
	serveErr := make(chan error, 1)
	go func() {
		log.Info("http: listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	code := 0
	select {
	case <-ctx.Done():
		log.Info("time-report: shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Critical("http: server failed", "addr", srv.Addr, "err", err)
			code = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http: graceful shutdown failed", "err", err)
		code = 1
	}
	if err := application.Close(shutdownCtx); err != nil {
		log.Error("time-report: close failed", "err", err)
		code = 1
	}

	if code == 0 {
		log.Info("time-report: stopped")
	}
	return code
}
