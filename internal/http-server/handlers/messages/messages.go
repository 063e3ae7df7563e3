package messages

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shopfront/internal/http-server/respond"
	"shopfront/internal/notify"
)

type Counter interface {
	Unread() notify.UnreadCount
}

type Reader interface {
	MarkMessageRead(ctx context.Context, id string) error
}

type Options struct {
	Log     *slog.Logger
	Counter Counter
	Reader  Reader
	Bus     *notify.Broadcaster
	Timeout time.Duration
}

type Handler struct {
	opts Options
}

func New(opts Options) *Handler {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Handler{opts: opts}
}

func (h *Handler) Unread(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.opts.Counter.Unread())
}

// MarkRead marks the message read upstream, then tells the badge poller to
// refresh without waiting for its next tick.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respond.WriteError(w, http.StatusBadRequest, "bad_request", "id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.Timeout)
	defer cancel()

	if err := h.opts.Reader.MarkMessageRead(ctx, id); err != nil {
		if respond.WriteUpstreamError(w, err) {
			return
		}
		h.opts.Log.Error("mark message read failed", "id", id, "err", err)
		respond.WriteError(w, http.StatusBadGateway, "upstream_error", "failed to reach shop api")
		return
	}

	if h.opts.Bus != nil {
		h.opts.Bus.Publish(notify.TopicMessagesChanged)
	}
	w.WriteHeader(http.StatusNoContent)
}
