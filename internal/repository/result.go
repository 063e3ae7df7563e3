package repository

import (
	"shopfront/internal/catalog"
	"shopfront/internal/domain/models"
)

// CatalogResult is what the CLI writes after running a catalog query.
type CatalogResult struct {
	FetchedAt     string                `json:"fetched_at"`
	BaseURL       string                `json:"base_url,omitempty"`
	Query         catalog.QueryState    `json:"query"`
	ActiveFilters int                   `json:"active_filters"`
	Empty         catalog.EmptyKind     `json:"empty"`
	Categories    []string              `json:"categories,omitempty"`
	Entries       []models.CatalogEntry `json:"entries"`
	Count         int                   `json:"count"`
}
