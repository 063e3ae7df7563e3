package badgerstore

import (
	"context"
	"testing"

	"shopfront/internal/logger"
	"shopfront/internal/notify"
)

var _ notify.ViewedStore = (*Store)(nil)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir, logger.Discard())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestViewedRoundTripInMemory(t *testing.T) {
	s := openTestStore(t, "")
	defer s.Close()
	ctx := context.Background()

	v, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(v.Orders)+len(v.Products) != 0 {
		t.Fatalf("fresh store not empty: %+v", v)
	}

	if err := s.MarkOrder(ctx, "o1"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkOrder(ctx, "o1"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkProduct(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkProduct(ctx, "p:with:colons"); err != nil {
		t.Fatal(err)
	}

	want := notify.NewViewed()
	want.AddOrder("o1")
	want.AddProduct("p1")
	want.AddProduct("p:with:colons")

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
}

func TestViewedSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := openTestStore(t, dir)
	if err := s.MarkOrder(ctx, "keep-me"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s = openTestStore(t, dir)
	defer s.Close()
	v, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !v.HasOrder("keep-me") || len(v.Products) != 0 {
		t.Fatalf("after reopen = %+v", v)
	}
}
