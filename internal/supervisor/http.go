package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// HTTPService adapts an *http.Server to suture.Service.
type HTTPService struct {
	Server          *http.Server
	ShutdownTimeout time.Duration
	Log             *slog.Logger
}

func (h *HTTPService) Serve(ctx context.Context) error {
	log := h.Log
	if log == nil {
		log = slog.Default()
	}
	timeout := h.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", "addr", h.Server.Addr)
		errCh <- h.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := h.Server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
		return err
	}
	log.Info("http server stopped")
	return ctx.Err()
}

func (h *HTTPService) String() string { return "http-server" }
