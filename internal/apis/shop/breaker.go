package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"shopfront/internal/apis/shop/endpoints"
	"shopfront/internal/domain/models"
	"shopfront/internal/metrics"
)

type BreakerOptions struct {
	Name         string
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration // closed-state count reset
	OpenTimeout  time.Duration // open -> half-open
	Logger       *slog.Logger
}

// Breaker guards a Service with a circuit breaker. While open, calls fail
// fast with gobreaker.ErrOpenState instead of waiting on a dead upstream.
type Breaker struct {
	next Service
	cb   *gobreaker.CircuitBreaker[any]
	name string
	log  *slog.Logger
}

func NewBreaker(next Service, opts BreakerOptions) *Breaker {
	if opts.Name == "" {
		opts.Name = "shop-api"
	}
	if opts.MinRequests == 0 {
		opts.MinRequests = 10
	}
	if opts.FailureRatio <= 0 {
		opts.FailureRatio = 0.6
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	log := opts.Logger

	metrics.CircuitBreakerState.WithLabelValues(opts.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 3,
		Interval:    opts.Interval,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.Requests < opts.MinRequests {
				return false
			}
			ratio := float64(c.TotalFailures) / float64(c.Requests)
			return ratio >= opts.FailureRatio
		},
		IsSuccessful: upstreamHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Breaker{next: next, cb: cb, name: opts.Name, log: log}
}

// upstreamHealthy treats client-side outcomes (4xx, caller cancellation) as
// healthy so only server and transport failures trip the breaker.
func upstreamHealthy(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *endpoints.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < 500 && apiErr.Status != 429
	}
	return false
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) execute(fn func() (any, error)) (any, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.UpstreamRequests.WithLabelValues(b.name, "rejected").Inc()
	}
	return res, err
}

func run[T any](b *Breaker, fn func() (T, error)) (T, error) {
	res, err := b.execute(func() (any, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	if res == nil {
		var zero T
		return zero, nil
	}
	typed, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", res)
	}
	return typed, nil
}

func (b *Breaker) ListServices(ctx context.Context, category string) ([]models.CatalogEntry, error) {
	return run(b, func() ([]models.CatalogEntry, error) { return b.next.ListServices(ctx, category) })
}

func (b *Breaker) SearchServices(ctx context.Context, term string) ([]models.CatalogEntry, error) {
	return run(b, func() ([]models.CatalogEntry, error) { return b.next.SearchServices(ctx, term) })
}

func (b *Breaker) ListServiceCategories(ctx context.Context) ([]string, error) {
	return run(b, func() ([]string, error) { return b.next.ListServiceCategories(ctx) })
}

func (b *Breaker) ListOrders(ctx context.Context) ([]models.Order, error) {
	return run(b, func() ([]models.Order, error) { return b.next.ListOrders(ctx) })
}

func (b *Breaker) ListProducts(ctx context.Context) ([]models.Product, error) {
	return run(b, func() ([]models.Product, error) { return b.next.ListProducts(ctx) })
}

func (b *Breaker) ListMessages(ctx context.Context) ([]models.Message, error) {
	return run(b, func() ([]models.Message, error) { return b.next.ListMessages(ctx) })
}

func (b *Breaker) MarkMessageRead(ctx context.Context, id string) error {
	_, err := run(b, func() (struct{}, error) { return struct{}{}, b.next.MarkMessageRead(ctx, id) })
	return err
}

func (b *Breaker) Mutate(ctx context.Context, m Mutation) (json.RawMessage, error) {
	return run(b, func() (json.RawMessage, error) { return b.next.Mutate(ctx, m) })
}
