package catalog

import "strings"

// QueryState is the full set of visitor selections driving the pipeline.
type QueryState struct {
	Category       string `json:"category"`
	SearchTerm     string `json:"search_term"`
	SearchMode     bool   `json:"search_mode"`
	PriceFilter    string `json:"price_filter"`
	DurationFilter string `json:"duration_filter"`
	Sort           string `json:"sort"`
}

func DefaultQueryState() QueryState {
	return QueryState{
		Category:       All,
		PriceFilter:    All,
		DurationFilter: All,
		Sort:           Recommended,
	}
}

// Normalize maps empty or unknown ids to their defaults.
func (q QueryState) Normalize() QueryState {
	if strings.TrimSpace(q.Category) == "" {
		q.Category = All
	}
	if !knownCriterion(PriceCriteria, q.PriceFilter) {
		q.PriceFilter = All
	}
	if !knownCriterion(DurationCriteria, q.DurationFilter) {
		q.DurationFilter = All
	}
	if !knownSort(q.Sort) {
		q.Sort = Recommended
	}
	return q
}

// ActiveFilterCount counts non-default selections across category, price,
// duration, sort and search.
func ActiveFilterCount(q QueryState) int {
	q = q.Normalize()
	n := 0
	if q.Category != All {
		n++
	}
	if q.PriceFilter != All {
		n++
	}
	if q.DurationFilter != All {
		n++
	}
	if q.Sort != Recommended {
		n++
	}
	if q.SearchMode && strings.TrimSpace(q.SearchTerm) != "" {
		n++
	}
	return n
}
