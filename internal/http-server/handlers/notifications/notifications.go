package notifications

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shopfront/internal/http-server/query"
	"shopfront/internal/http-server/respond"
	"shopfront/internal/notify"
)

type Poller interface {
	Dropdown(limit int) notify.Dropdown
	MarkOrderViewed(ctx context.Context, id string) error
	MarkProductViewed(ctx context.Context, id string) error
}

type Options struct {
	Log          *slog.Logger
	Poller       Poller
	DisplayLimit int
	Timeout      time.Duration
}

type Handler struct {
	opts Options
}

func New(opts Options) *Handler {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.DisplayLimit <= 0 {
		opts.DisplayLimit = notify.DefaultDisplayLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Handler{opts: opts}
}

// List returns the dropdown. It never marks anything as viewed.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := query.PositiveInt(r, "limit", h.opts.DisplayLimit)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, h.opts.Poller.Dropdown(limit))
}

func (h *Handler) OrderViewed(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, "order", h.opts.Poller.MarkOrderViewed)
}

func (h *Handler) ProductViewed(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, "product", h.opts.Poller.MarkProductViewed)
}

func (h *Handler) mark(w http.ResponseWriter, r *http.Request, kind string, fn func(context.Context, string) error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respond.WriteError(w, http.StatusBadRequest, "bad_request", "id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.Timeout)
	defer cancel()

	if err := fn(ctx, id); err != nil {
		if errors.Is(err, notify.ErrNotAdmin) {
			respond.WriteError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		h.opts.Log.Error("mark viewed failed", "kind", kind, "id", id, "err", err)
		respond.WriteInternalError(w)
		return
	}

	respond.WriteJSON(w, http.StatusOK, h.opts.Poller.Dropdown(h.opts.DisplayLimit))
}
