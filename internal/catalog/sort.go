package catalog

import (
	"slices"

	"shopfront/internal/domain/models"
)

type SortField int

const (
	SortNone SortField = iota
	SortPrice
	SortDuration
)

type SortOption struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Field SortField `json:"-"`
	Desc  bool      `json:"-"`
}

const Recommended = "recommended"

var SortOptions = []SortOption{
	{ID: Recommended, Label: "Recommended", Field: SortNone},
	{ID: "price-asc", Label: "Price: low to high", Field: SortPrice},
	{ID: "price-desc", Label: "Price: high to low", Field: SortPrice, Desc: true},
	{ID: "duration-asc", Label: "Duration: shortest first", Field: SortDuration},
	{ID: "duration-desc", Label: "Duration: longest first", Field: SortDuration, Desc: true},
}

func lookupSort(id string) SortOption {
	for _, o := range SortOptions {
		if o.ID == id {
			return o
		}
	}
	return SortOptions[0]
}

func knownSort(id string) bool {
	for _, o := range SortOptions {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (o SortOption) key(e models.CatalogEntry) int {
	switch o.Field {
	case SortPrice:
		return e.PriceOrZero()
	case SortDuration:
		return e.DurationOrZero()
	}
	return 0
}

// apply sorts in place. Equal keys keep their input order in both directions.
func (o SortOption) apply(entries []models.CatalogEntry) {
	if o.Field == SortNone {
		return
	}
	slices.SortStableFunc(entries, func(a, b models.CatalogEntry) int {
		ka, kb := o.key(a), o.key(b)
		if o.Desc {
			ka, kb = kb, ka
		}
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
}
