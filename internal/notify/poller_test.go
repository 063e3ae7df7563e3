package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"shopfront/internal/domain/models"
	"shopfront/internal/logger"
	"shopfront/internal/metrics"
)

type fakeSource struct {
	mu        sync.Mutex
	orders    []models.Order
	products  []models.Product
	ordersErr error
	calls     atomic.Int32
	gate      chan struct{}
}

func (f *fakeSource) ListOrders(ctx context.Context) ([]models.Order, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	return f.orders, nil
}

func (f *fakeSource) ListProducts(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products, nil
}

func (f *fakeSource) set(fn func(f *fakeSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func adminPoller(src Source, store ViewedStore) *Poller {
	return NewPoller(src, store, Options{Admin: true, Interval: time.Hour, Logger: logger.Discard()})
}

func scenarioSource() *fakeSource {
	return &fakeSource{
		orders: []models.Order{
			{ID: "a", Status: models.OrderPending},
			{ID: "b", Status: models.OrderShipped},
		},
	}
}

func TestPollerUnseenOrders(t *testing.T) {
	t.Parallel()

	p := adminPoller(scenarioSource(), NewMemoryStore())
	ctx := context.Background()

	if !p.Poll(ctx, p.Generation()) {
		t.Fatal("cycle not committed")
	}
	if n := len(p.Snapshot().NewOrders); n != 1 {
		t.Fatalf("unseen orders = %d, want 1", n)
	}

	if err := p.MarkOrderViewed(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if n := p.Snapshot().Unread; n != 0 {
		t.Fatalf("unread right after mark = %d", n)
	}

	p.Poll(ctx, p.Generation())
	if n := len(p.Snapshot().NewOrders); n != 0 {
		t.Fatalf("unseen orders after next cycle = %d, want 0", n)
	}
}

func TestPollerProductViewedDropsBothKinds(t *testing.T) {
	t.Parallel()

	src := &fakeSource{products: []models.Product{
		{ID: "p1", Stock: stock(2)},
		{ID: "p2", Stock: stock(0)},
	}}
	p := adminPoller(src, NewMemoryStore())
	ctx := context.Background()
	p.Poll(ctx, p.Generation())

	if err := p.MarkProductViewed(ctx, "p2"); err != nil {
		t.Fatal(err)
	}
	s := p.Snapshot()
	if len(s.SoldOut) != 0 || len(s.LowStock) != 1 || s.Unread != 1 {
		t.Fatalf("snapshot = %+v", s)
	}
}

func TestPollerReintroducedIDStaysViewed(t *testing.T) {
	t.Parallel()

	src := scenarioSource()
	p := adminPoller(src, NewMemoryStore())
	ctx := context.Background()

	p.Poll(ctx, p.Generation())
	if err := p.MarkOrderViewed(ctx, "a"); err != nil {
		t.Fatal(err)
	}

	// a leaves pending, then returns; it was viewed, so it stays hidden.
	src.set(func(f *fakeSource) { f.orders = []models.Order{{ID: "a", Status: models.OrderDelivered}} })
	p.Poll(ctx, p.Generation())
	src.set(func(f *fakeSource) { f.orders = []models.Order{{ID: "a", Status: models.OrderProcessing}, {ID: "z", Status: models.OrderPending}} })
	p.Poll(ctx, p.Generation())

	if got := keys(p.Snapshot().NewOrders); len(got) != 1 || got[0] != "z" {
		t.Fatalf("unseen = %v", got)
	}
}

func TestPollerFailedCycleKeepsSnapshot(t *testing.T) {
	t.Parallel()

	src := scenarioSource()
	p := adminPoller(src, NewMemoryStore())
	ctx := context.Background()
	p.Poll(ctx, p.Generation())
	before := p.Snapshot()

	src.set(func(f *fakeSource) {
		f.ordersErr = errors.New("502 bad gateway")
		f.orders = nil
	})
	if p.Poll(ctx, p.Generation()) {
		t.Fatal("failed cycle committed")
	}

	after := p.Snapshot()
	if after.Unread != before.Unread || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("snapshot changed: before=%+v after=%+v", before, after)
	}
}

func TestPollerNotAdmin(t *testing.T) {
	t.Parallel()

	src := scenarioSource()
	p := NewPoller(src, NewMemoryStore(), Options{Logger: logger.Discard()})
	p.Start(context.Background())
	p.Stop()

	if n := src.calls.Load(); n != 0 {
		t.Fatalf("non-admin poller fetched %d times", n)
	}
	if err := p.MarkOrderViewed(context.Background(), "a"); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("err = %v", err)
	}
}

func TestPollerStartRunsImmediately(t *testing.T) {
	t.Parallel()

	src := scenarioSource()
	p := adminPoller(src, NewMemoryStore())
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for p.Snapshot().Unread != 1 {
		if time.Now().After(deadline) {
			t.Fatal("first cycle did not commit")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPollerDiscardsStaleCycle(t *testing.T) {
	before := testutil.ToFloat64(metrics.PollCycles.WithLabelValues("orders", "stale"))

	src := scenarioSource()
	src.gate = make(chan struct{})
	p := adminPoller(src, NewMemoryStore())

	gen := p.Generation()
	done := make(chan bool, 1)
	go func() { done <- p.Poll(context.Background(), gen) }()

	// simulate Start/Stop while the cycle is in flight
	p.Start(context.Background())
	p.Stop()
	close(src.gate)

	if <-done {
		t.Fatal("stale cycle committed")
	}
	if p.Snapshot().Unread != 0 {
		t.Fatal("stale result visible")
	}
	if after := testutil.ToFloat64(metrics.PollCycles.WithLabelValues("orders", "stale")); after <= before {
		t.Fatalf("stale counter %v -> %v", before, after)
	}
}

// pausingStore holds Load after it has read the set, so a mark can land
// between the read and the cycle's commit.
type pausingStore struct {
	*MemoryStore
	loaded  chan struct{}
	release chan struct{}
}

func (s *pausingStore) Load(ctx context.Context) (Viewed, error) {
	v, err := s.MemoryStore.Load(ctx)
	select {
	case s.loaded <- struct{}{}:
	default:
	}
	<-s.release
	return v, err
}

func TestPollerMarkDuringCycleStaysViewed(t *testing.T) {
	t.Parallel()

	store := &pausingStore{
		MemoryStore: NewMemoryStore(),
		loaded:      make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	p := adminPoller(scenarioSource(), store)
	ctx := context.Background()

	done := make(chan bool, 1)
	go func() { done <- p.Poll(ctx, p.Generation()) }()

	<-store.loaded
	if err := p.MarkOrderViewed(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	close(store.release)

	if !<-done {
		t.Fatal("cycle not committed")
	}
	if s := p.Snapshot(); s.Unread != 0 || len(s.NewOrders) != 0 {
		t.Fatalf("viewed order came back: unread=%d orders=%v", s.Unread, s.NewOrders)
	}

	// the next cycle reads "a" from the store and stops tracking it locally
	if !p.Poll(ctx, p.Generation()) {
		t.Fatal("second cycle not committed")
	}
	if s := p.Snapshot(); s.Unread != 0 {
		t.Fatalf("unread = %d after second cycle", s.Unread)
	}
	p.mu.RLock()
	pending := len(p.marked.Orders)
	p.mu.RUnlock()
	if pending != 0 {
		t.Fatalf("marked ids still tracked: %d", pending)
	}
}
