package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopfront/internal/catalog"
	"shopfront/internal/repository"
)

// CatalogQuery is one scripted walk through the catalog: browse a category
// or search, then narrow and sort locally.
type CatalogQuery struct {
	Category string
	Search   string
	Price    string
	Duration string
	Sort     string
}

type CatalogQueryService struct {
	fetcher catalog.Fetcher
	baseURL string
	log     *slog.Logger
	opts    catalog.Options
}

func NewCatalogQueryService(
	fetcher catalog.Fetcher,
	baseURL string,
	logger *slog.Logger,
	opts catalog.Options,
) *CatalogQueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogQueryService{
		fetcher: fetcher,
		baseURL: baseURL,
		log:     logger,
		opts:    opts,
	}
}

// Run drives a fresh session through the same actions a visitor would take.
// Any failed fetch aborts the run.
func (s *CatalogQueryService) Run(ctx context.Context, q CatalogQuery) (repository.CatalogResult, error) {
	sess := catalog.NewSession(uuid.NewString(), s.fetcher, s.opts, s.log)

	if _, err := sess.Load(ctx); err != nil {
		return repository.CatalogResult{}, err
	}

	if c := strings.TrimSpace(q.Category); c != "" && c != catalog.All {
		if _, err := sess.SelectCategory(ctx, c); err != nil {
			return repository.CatalogResult{}, err
		}
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		if _, err := sess.SubmitSearch(ctx, term); err != nil {
			return repository.CatalogResult{}, err
		}
	}

	if q.Price != "" {
		sess.SetPriceFilter(q.Price)
	}
	if q.Duration != "" {
		sess.SetDurationFilter(q.Duration)
	}
	if q.Sort != "" {
		sess.SetSort(q.Sort)
	}

	v := sess.View()
	if v.Error != "" {
		return repository.CatalogResult{}, fmt.Errorf("%w: %s", catalog.ErrLoadFailed, v.Error)
	}

	s.log.Debug("catalog query done",
		"category", v.State.Category,
		"search", v.State.SearchTerm,
		"price", v.State.PriceFilter,
		"duration", v.State.DurationFilter,
		"sort", v.State.Sort,
		"count", v.Total,
	)

	return repository.CatalogResult{
		FetchedAt:     time.Now().UTC().Format(time.RFC3339),
		BaseURL:       s.baseURL,
		Query:         v.State,
		ActiveFilters: v.ActiveFilters,
		Empty:         v.Empty,
		Categories:    v.Categories,
		Entries:       v.Entries,
		Count:         v.Total,
	}, nil
}
