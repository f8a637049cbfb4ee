package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully. writeTimeout must cover a synchronous pipeline run.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, writeTimeout time.Duration, log *slog.Logger) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
