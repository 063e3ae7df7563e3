package usecases

import (
	"context"
	"errors"
	"testing"

	"shopfront/internal/catalog"
	"shopfront/internal/domain/models"
	"shopfront/internal/logger"
)

type stubFetcher struct {
	list    map[string][]models.CatalogEntry
	search  []models.CatalogEntry
	listErr error
}

func (s stubFetcher) ListServices(_ context.Context, category string) ([]models.CatalogEntry, error) {
	if s.listErr != nil && category != catalog.All {
		return nil, s.listErr
	}
	return s.list[category], nil
}

func (s stubFetcher) SearchServices(context.Context, string) ([]models.CatalogEntry, error) {
	return s.search, nil
}

func (s stubFetcher) ListServiceCategories(context.Context) ([]string, error) {
	return []string{"spa"}, nil
}

func p(v int) *int { return &v }

func TestCatalogQueryRun(t *testing.T) {
	t.Parallel()

	f := stubFetcher{list: map[string][]models.CatalogEntry{
		catalog.All: {{ID: "x", Name: "x", Price: p(1)}},
		"spa": {
			{ID: "cheap", Name: "Sauna", Price: p(5000), Duration: p(30)},
			{ID: "mid", Name: "Massage", Price: p(15000), Duration: p(60)},
			{ID: "top", Name: "Ritual", Price: p(12000), Duration: p(90)},
		},
	}}
	svc := NewCatalogQueryService(f, "http://shop.test", logger.Discard(), catalog.DefaultOptions())

	res, err := svc.Run(context.Background(), CatalogQuery{Category: "spa", Price: "100-200", Sort: "price-desc"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 || res.Entries[0].ID != "mid" || res.Entries[1].ID != "top" {
		t.Fatalf("result = %+v", res)
	}
	if res.ActiveFilters != 3 || res.Query.Category != "spa" || res.BaseURL != "http://shop.test" {
		t.Fatalf("result meta = %+v", res)
	}
	if len(res.Categories) != 1 {
		t.Fatalf("categories = %v", res.Categories)
	}
}

func TestCatalogQueryRunFailure(t *testing.T) {
	t.Parallel()

	f := stubFetcher{listErr: errors.New("refused")}
	svc := NewCatalogQueryService(f, "", logger.Discard(), catalog.DefaultOptions())

	if _, err := svc.Run(context.Background(), CatalogQuery{Category: "spa"}); !errors.Is(err, catalog.ErrLoadFailed) {
		t.Fatalf("err = %v, want ErrLoadFailed", err)
	}
}
