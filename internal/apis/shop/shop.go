package shop

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"shopfront/internal/apis/shop/endpoints"
	"shopfront/internal/apis/shop/mapper"
	"shopfront/internal/client"
	"shopfront/internal/domain/models"
	"shopfront/internal/metrics"
)

// Resource names an admin collection that accepts REST mutations.
type Resource string

const (
	Staff     Resource = "staff"
	Products  Resource = "products"
	Customers Resource = "customers"
)

func ParseResource(s string) (Resource, bool) {
	switch r := Resource(strings.ToLower(strings.TrimSpace(s))); r {
	case Staff, Products, Customers:
		return r, true
	}
	return "", false
}

type Mutation struct {
	Resource Resource
	Method   string // POST, PUT or DELETE
	ID       string
	Body     any
}

type Service interface {
	ListServices(ctx context.Context, category string) ([]models.CatalogEntry, error)
	SearchServices(ctx context.Context, term string) ([]models.CatalogEntry, error)
	ListServiceCategories(ctx context.Context) ([]string, error)

	ListOrders(ctx context.Context) ([]models.Order, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListMessages(ctx context.Context) ([]models.Message, error)
	MarkMessageRead(ctx context.Context, id string) error

	Mutate(ctx context.Context, m Mutation) (json.RawMessage, error)
}

type Options struct {
	BaseURL   string
	PageLimit int
	Logger    *slog.Logger
}

type service struct {
	api       *endpoints.Client
	log       *slog.Logger
	pageLimit int
}

func New(transport client.Transport, opts Options) Service {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:5000"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = 100
	}

	s := &service{log: opts.Logger, pageLimit: opts.PageLimit}
	s.api = endpoints.New(transport, opts.BaseURL, s.applyDefaultHeaders)
	return s
}

func (s *service) applyDefaultHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "shopfront/1.0")
}

// observe records latency and outcome for one upstream call.
func observe(endpoint string, start time.Time, err error) {
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

// ListServices fetches active services, optionally scoped to a category.
// "" and "all" both mean every category.
func (s *service) ListServices(ctx context.Context, category string) (out []models.CatalogEntry, err error) {
	defer func(t time.Time) { observe("services", t, err) }(time.Now())

	q := endpoints.ServiceQuery{ActiveOnly: true, Limit: s.pageLimit}
	if c := strings.TrimSpace(category); c != "" && !strings.EqualFold(c, "all") {
		q.Category = c
	}

	raw, err := s.api.ListServices(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list services category=%q: %w", q.Category, err)
	}
	return mapper.FromServices(raw), nil
}

func (s *service) SearchServices(ctx context.Context, term string) (out []models.CatalogEntry, err error) {
	defer func(t time.Time) { observe("services_search", t, err) }(time.Now())

	raw, err := s.api.SearchServices(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search services term=%q: %w", term, err)
	}
	return mapper.FromServices(raw), nil
}

func (s *service) ListServiceCategories(ctx context.Context) (out []string, err error) {
	defer func(t time.Time) { observe("service_categories", t, err) }(time.Now())

	out, err = s.api.ListServiceCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list service categories: %w", err)
	}
	return out, nil
}

func (s *service) ListOrders(ctx context.Context) (out []models.Order, err error) {
	defer func(t time.Time) { observe("orders", t, err) }(time.Now())

	raw, err := s.api.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return mapper.FromOrders(raw), nil
}

func (s *service) ListProducts(ctx context.Context) (out []models.Product, err error) {
	defer func(t time.Time) { observe("products", t, err) }(time.Now())

	raw, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return mapper.FromProducts(raw), nil
}

func (s *service) ListMessages(ctx context.Context) (out []models.Message, err error) {
	defer func(t time.Time) { observe("messages", t, err) }(time.Now())

	raw, err := s.api.ListMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return mapper.FromMessages(raw), nil
}

func (s *service) MarkMessageRead(ctx context.Context, id string) (err error) {
	defer func(t time.Time) { observe("message_read", t, err) }(time.Now())

	if id == "" {
		return fmt.Errorf("message id must not be empty")
	}
	if err := s.api.MarkMessageRead(ctx, id); err != nil {
		return fmt.Errorf("mark message %s read: %w", id, err)
	}
	return nil
}

func (s *service) Mutate(ctx context.Context, m Mutation) (out json.RawMessage, err error) {
	defer func(t time.Time) { observe(string(m.Resource)+"_"+strings.ToLower(m.Method), t, err) }(time.Now())

	switch m.Method {
	case http.MethodPost:
		if m.ID != "" {
			return nil, fmt.Errorf("%s create: unexpected id", m.Resource)
		}
	case http.MethodPut, http.MethodDelete:
		if m.ID == "" {
			return nil, fmt.Errorf("%s %s: id required", m.Resource, m.Method)
		}
	default:
		return nil, fmt.Errorf("unsupported method %q", m.Method)
	}
	if _, ok := ParseResource(string(m.Resource)); !ok {
		return nil, fmt.Errorf("unknown resource %q", m.Resource)
	}

	body := m.Body
	if m.Method == http.MethodDelete {
		body = nil
	}

	out, err = s.api.Send(ctx, m.Method, string(m.Resource), m.ID, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", m.Method, m.Resource, m.ID, err)
	}

	s.log.Info("admin mutation",
		"resource", m.Resource,
		"method", m.Method,
		"id", m.ID,
	)
	return out, nil
}
