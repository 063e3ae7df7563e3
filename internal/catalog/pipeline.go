package catalog

import (
	"strings"

	"shopfront/internal/domain/models"
)

type Options struct {
	// RefineSearch re-filters server search results by a case-insensitive
	// substring match on name or description.
	RefineSearch bool
}

func DefaultOptions() Options {
	return Options{RefineSearch: true}
}

// Apply returns the entries to display for q. Steps run in a fixed order:
// price, duration, search refinement, sort. The input slice is not modified.
func Apply(entries []models.CatalogEntry, q QueryState, opts Options) []models.CatalogEntry {
	q = q.Normalize()

	price := lookupCriterion(PriceCriteria, q.PriceFilter)
	duration := lookupCriterion(DurationCriteria, q.DurationFilter)

	term := strings.ToLower(strings.TrimSpace(q.SearchTerm))
	refine := opts.RefineSearch && q.SearchMode && term != ""

	out := make([]models.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if !price.Match(e.PriceOrZero()) {
			continue
		}
		if !duration.Match(e.DurationOrZero()) {
			continue
		}
		if refine && !matchesTerm(e, term) {
			continue
		}
		out = append(out, e)
	}

	lookupSort(q.Sort).apply(out)
	return out
}

// term must already be lower-cased.
func matchesTerm(e models.CatalogEntry, term string) bool {
	return strings.Contains(strings.ToLower(e.Name), term) ||
		strings.Contains(strings.ToLower(e.Description), term)
}
