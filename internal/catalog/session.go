package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"shopfront/internal/domain/models"
)

// LoadErrorMessage is shown in place of any fetch failure detail.
const LoadErrorMessage = "Failed to load services. Please try again."

var ErrLoadFailed = errors.New("catalog: load failed")

// Fetcher is the upstream the session pulls entries from.
type Fetcher interface {
	ListServices(ctx context.Context, category string) ([]models.CatalogEntry, error)
	SearchServices(ctx context.Context, term string) ([]models.CatalogEntry, error)
	ListServiceCategories(ctx context.Context) ([]string, error)
}

type EmptyKind string

const (
	EmptyNone       EmptyKind = "none"
	EmptyNoServices EmptyKind = "no_services"
	EmptyNoMatches  EmptyKind = "no_matches"
)

// Outcome reports whether an action went to the network.
type Outcome struct {
	Fetched bool `json:"fetched"`
}

type View struct {
	Entries       []models.CatalogEntry `json:"entries"`
	State         QueryState            `json:"state"`
	ActiveFilters int                   `json:"active_filters"`
	Total         int                   `json:"total"`
	Empty         EmptyKind             `json:"empty"`
	Error         string                `json:"error,omitempty"`
	Categories    []string              `json:"categories"`
	Loaded        bool                  `json:"loaded"`
}

// Session holds one visitor's query state and last fetched page.
// Category and search changes fetch; price, duration and sort recompute locally.
type Session struct {
	ID string

	fetcher Fetcher
	opts    Options
	log     *slog.Logger

	mu         sync.Mutex
	state      QueryState
	fetched    []models.CatalogEntry
	fetchedFor string // search term behind fetched, empty for a category list
	loaded     bool
	categories []string
	errMsg     string
	seq        uint64
	lastSeen   time.Time
}

func NewSession(id string, f Fetcher, opts Options, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		ID:       id,
		fetcher:  f,
		opts:     opts,
		log:      log,
		state:    DefaultQueryState(),
		lastSeen: time.Now(),
	}
}

// Load performs the initial unfiltered fetch and pulls the category list.
// A category list failure is logged and otherwise ignored.
func (s *Session) Load(ctx context.Context) (Outcome, error) {
	if cats, err := s.fetcher.ListServiceCategories(ctx); err != nil {
		s.log.Warn("catalog categories fetch failed", "session", s.ID, "err", err)
	} else {
		s.mu.Lock()
		s.categories = cats
		s.mu.Unlock()
	}

	s.mu.Lock()
	category := s.state.Category
	s.mu.Unlock()
	return s.fetch(ctx, "", func(ctx context.Context) ([]models.CatalogEntry, error) {
		return s.fetcher.ListServices(ctx, category)
	})
}

func (s *Session) SelectCategory(ctx context.Context, category string) (Outcome, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = All
	}

	s.mu.Lock()
	s.state.Category = category
	s.state.SearchMode = false
	s.state.SearchTerm = ""
	s.mu.Unlock()

	return s.fetch(ctx, "", func(ctx context.Context) ([]models.CatalogEntry, error) {
		return s.fetcher.ListServices(ctx, category)
	})
}

// SubmitSearch runs a server-side search. A blank term behaves like ClearSearch.
func (s *Session) SubmitSearch(ctx context.Context, term string) (Outcome, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ClearSearch(ctx)
	}

	s.mu.Lock()
	s.state.SearchTerm = term
	s.state.SearchMode = true
	s.mu.Unlock()

	return s.fetch(ctx, term, func(ctx context.Context) ([]models.CatalogEntry, error) {
		return s.fetcher.SearchServices(ctx, term)
	})
}

// ClearSearch leaves search mode and refetches the current category.
func (s *Session) ClearSearch(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	s.state.SearchTerm = ""
	s.state.SearchMode = false
	category := s.state.Category
	s.mu.Unlock()

	return s.fetch(ctx, "", func(ctx context.Context) ([]models.CatalogEntry, error) {
		return s.fetcher.ListServices(ctx, category)
	})
}

func (s *Session) SetPriceFilter(id string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PriceFilter = id
	s.state = s.state.Normalize()
	s.touch()
	return Outcome{}
}

func (s *Session) SetDurationFilter(id string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DurationFilter = id
	s.state = s.state.Normalize()
	s.touch()
	return Outcome{}
}

func (s *Session) SetSort(id string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Sort = id
	s.state = s.state.Normalize()
	s.touch()
	return Outcome{}
}

// ClearAll resets every dimension. It fetches the unfiltered list only when
// the visitor was searching or browsing a category; otherwise it is local.
func (s *Session) ClearAll(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	needFetch := s.state.SearchMode || s.state.Category != All
	s.state = DefaultQueryState()
	s.touch()

	if !needFetch {
		// an earlier failure does not outlive a reset over a loaded list
		if s.loaded {
			s.errMsg = ""
		}
		s.mu.Unlock()
		return Outcome{}, nil
	}
	s.mu.Unlock()

	return s.fetch(ctx, "", func(ctx context.Context) ([]models.CatalogEntry, error) {
		return s.fetcher.ListServices(ctx, All)
	})
}

// fetch runs load outside the lock and commits only if no newer fetch has
// started meanwhile. On failure the previous list is kept. term is the search
// that produced the list, empty for a category fetch.
func (s *Session) fetch(ctx context.Context, term string, load func(context.Context) ([]models.CatalogEntry, error)) (Outcome, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.touch()
	s.mu.Unlock()

	entries, err := load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return Outcome{Fetched: true}, nil
	}
	if err != nil {
		s.errMsg = LoadErrorMessage
		s.log.Warn("catalog fetch failed",
			"session", s.ID,
			"category", s.state.Category,
			"search", s.state.SearchMode,
			"err", err,
		)
		return Outcome{Fetched: true}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	s.fetched = entries
	s.fetchedFor = term
	s.loaded = true
	s.errMsg = ""
	return Outcome{Fetched: true}, nil
}

func (s *Session) touch() {
	s.lastSeen = time.Now()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) State() QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View recomputes the displayed list from the last fetched page.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Refine against the search that produced the list, not a pending or
	// failed one, so a failed fetch leaves the rendered list as it was.
	q := s.state
	q.SearchMode = s.fetchedFor != ""
	q.SearchTerm = s.fetchedFor
	entries := Apply(s.fetched, q, s.opts)

	empty := EmptyNone
	switch {
	case len(s.fetched) == 0:
		empty = EmptyNoServices
	case len(entries) == 0:
		empty = EmptyNoMatches
	}

	cats := make([]string, len(s.categories))
	copy(cats, s.categories)

	return View{
		Entries:       entries,
		State:         s.state,
		ActiveFilters: ActiveFilterCount(s.state),
		Total:         len(entries),
		Empty:         empty,
		Error:         s.errMsg,
		Categories:    cats,
		Loaded:        s.loaded,
	}
}
