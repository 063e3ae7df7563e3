package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"shopfront/internal/catalog"
	"shopfront/internal/http-server/handlers"
	"shopfront/internal/http-server/respond"
)

const CookieName = "sf_session"

type Options struct {
	Log     *slog.Logger
	Store   *catalog.SessionStore
	Timeout time.Duration
	Secure  bool // mark the session cookie Secure
}

type Handler struct {
	log     *slog.Logger
	store   *catalog.SessionStore
	timeout time.Duration
	secure  bool
}

func New(opts Options) *Handler {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Handler{log: opts.Log, store: opts.Store, timeout: opts.Timeout, secure: opts.Secure}
}

// action runs fn against the caller's session and answers with its view.
// Fetch failures are reported inside the view, not as an HTTP error.
func (h *Handler) action(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, s *catalog.Session) error) {
	if h.store == nil {
		h.log.Error("catalog handler misconfigured: store is nil")
		respond.WriteInternalError(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}
	s, created, err := h.store.GetOrCreate(ctx, id)
	if err != nil && !errors.Is(err, catalog.ErrLoadFailed) {
		h.log.Error("catalog session load failed", "err", err)
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if fn != nil {
		if err := fn(ctx, s); err != nil && !errors.Is(err, catalog.ErrLoadFailed) {
			h.log.Error("catalog action failed", "session", s.ID, "err", err)
		}
	}
	respond.WriteJSON(w, http.StatusOK, s.View())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, nil)
}

type categoryReq struct {
	Category string `json:"category"`
}

func (h *Handler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	h.action(w, r, func(ctx context.Context, s *catalog.Session) error {
		_, err := s.SelectCategory(ctx, req.Category)
		return err
	})
}

type searchReq struct {
	Term string `json:"term"`
}

func (h *Handler) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	var req searchReq
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	h.action(w, r, func(ctx context.Context, s *catalog.Session) error {
		_, err := s.SubmitSearch(ctx, req.Term)
		return err
	})
}

func (h *Handler) ClearSearch(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, s *catalog.Session) error {
		_, err := s.ClearSearch(ctx)
		return err
	})
}

// filtersReq fields are optional; absent ones keep their current value.
type filtersReq struct {
	Price    *string `json:"price"`
	Duration *string `json:"duration"`
	Sort     *string `json:"sort"`
}

func (h *Handler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersReq
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	h.action(w, r, func(_ context.Context, s *catalog.Session) error {
		if req.Price != nil {
			s.SetPriceFilter(*req.Price)
		}
		if req.Duration != nil {
			s.SetDurationFilter(*req.Duration)
		}
		if req.Sort != nil {
			s.SetSort(*req.Sort)
		}
		return nil
	})
}

func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, s *catalog.Session) error {
		_, err := s.ClearAll(ctx)
		return err
	})
}

type optionsResp struct {
	Price    []catalog.Criterion  `json:"price"`
	Duration []catalog.Criterion  `json:"duration"`
	Sort     []catalog.SortOption `json:"sort"`
}

// Options lists the selectable filter and sort ids with their labels.
func (h *Handler) Options(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSON(w, http.StatusOK, optionsResp{
		Price:    catalog.PriceCriteria,
		Duration: catalog.DurationCriteria,
		Sort:     catalog.SortOptions,
	})
}
