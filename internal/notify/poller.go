package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"shopfront/internal/domain/models"
	"shopfront/internal/metrics"
)

var ErrNotAdmin = errors.New("notify: admin role required")

// Source is the upstream the poller reads orders and inventory from.
type Source interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

type Options struct {
	Admin    bool
	Interval time.Duration
	Logger   *slog.Logger
}

const DefaultInterval = 5 * time.Second

// Poller keeps the unseen order and stock notifications fresh.
//
// Each cycle fetches orders and products together and commits only when both
// succeed. Failed cycles are logged and skipped, leaving the last snapshot in
// place. Results of a cycle started before Stop are discarded.
type Poller struct {
	src   Source
	store ViewedStore
	opts  Options
	log   *slog.Logger

	mu       sync.RWMutex
	snapshot Snapshot
	marked   Viewed // marked through this poller, not yet seen in a store load
	gen      uint64
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewPoller(src Source, store ViewedStore, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Poller{
		src:    src,
		store:  store,
		opts:   opts,
		log:    opts.Logger.With("poller", "orders"),
		marked: NewViewed(),
	}
}

// Start runs one cycle immediately and then every Interval until Stop or ctx
// ends. It does nothing for non-admin users or when already running.
func (p *Poller) Start(ctx context.Context) {
	if !p.opts.Admin {
		p.log.Debug("notification poller disabled: not admin")
		return
	}

	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	p.gen++
	gen := p.gen
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop(ctx, gen)

	p.log.Info("notification poller started", "interval", p.opts.Interval)
}

// Stop cancels the loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.cancel = nil
	p.gen++
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info("notification poller stopped")
}

// Serve runs the poller until ctx is done.
func (p *Poller) Serve(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
	return ctx.Err()
}

func (p *Poller) String() string { return "order-stock-poller" }

func (p *Poller) loop(ctx context.Context, gen uint64) {
	defer p.wg.Done()

	p.Poll(ctx, gen)

	t := time.NewTicker(p.opts.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Poll(ctx, gen)
		}
	}
}

// Poll runs a single cycle on behalf of generation gen and reports whether
// its result was committed.
func (p *Poller) Poll(ctx context.Context, gen uint64) bool {
	var (
		orders   []models.Order
		products []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = p.src.ListOrders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = p.src.ListProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() == nil {
			p.log.Warn("poll cycle failed", "err", err)
			metrics.PollCycles.WithLabelValues("orders", "error").Inc()
		}
		return false
	}

	viewed, err := p.store.Load(ctx)
	if err != nil {
		p.log.Warn("poll cycle failed", "err", fmt.Errorf("load viewed: %w", err))
		metrics.PollCycles.WithLabelValues("orders", "error").Inc()
		return false
	}

	snap := Unseen(Derive(orders, products), viewed)
	snap.UpdatedAt = time.Now()

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		metrics.PollCycles.WithLabelValues("orders", "stale").Inc()
		return false
	}
	// A mark may land between the store load and this commit.
	snap = snap.without(p.marked)
	p.marked.forget(viewed)
	p.snapshot = snap
	publishUnseen(snap)
	p.mu.Unlock()

	metrics.PollCycles.WithLabelValues("orders", "ok").Inc()
	p.log.Debug("poll cycle committed",
		"new_orders", len(snap.NewOrders),
		"low_stock", len(snap.LowStock),
		"sold_out", len(snap.SoldOut),
	)
	return true
}

// Generation is the id a manual Poll must pass to commit its result.
func (p *Poller) Generation() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gen
}

// Snapshot returns the current unseen set. Reading it marks nothing.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot.clone()
}

func (p *Poller) Dropdown(limit int) Dropdown {
	return Display(p.Snapshot(), limit)
}

// MarkOrderViewed persists id and drops it from the current snapshot.
func (p *Poller) MarkOrderViewed(ctx context.Context, id string) error {
	if !p.opts.Admin {
		return ErrNotAdmin
	}
	if id == "" {
		return fmt.Errorf("order id must not be empty")
	}
	if err := p.store.MarkOrder(ctx, id); err != nil {
		return fmt.Errorf("mark order %s viewed: %w", id, err)
	}

	p.mu.Lock()
	p.marked.AddOrder(id)
	p.snapshot.dropOrder(id)
	publishUnseen(p.snapshot)
	p.mu.Unlock()

	return nil
}

// MarkProductViewed persists id and drops its low stock and sold out events.
func (p *Poller) MarkProductViewed(ctx context.Context, id string) error {
	if !p.opts.Admin {
		return ErrNotAdmin
	}
	if id == "" {
		return fmt.Errorf("product id must not be empty")
	}
	if err := p.store.MarkProduct(ctx, id); err != nil {
		return fmt.Errorf("mark product %s viewed: %w", id, err)
	}

	p.mu.Lock()
	p.marked.AddProduct(id)
	p.snapshot.dropProduct(id)
	publishUnseen(p.snapshot)
	p.mu.Unlock()

	return nil
}

// publishUnseen must run under p.mu: marks compact the event slices in place.
func publishUnseen(s Snapshot) {
	counts := map[Kind]int{KindNewOrder: 0, KindLowStock: 0, KindSoldOut: 0}
	for _, e := range s.Events() {
		counts[e.Kind()]++
	}
	for k, n := range counts {
		metrics.Unseen.WithLabelValues(string(k)).Set(float64(n))
	}
}
