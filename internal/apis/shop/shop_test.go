package shop

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"shopfront/internal/apis/shop/endpoints"
	"shopfront/internal/logger"
)

func newTestService(t *testing.T, h http.HandlerFunc) Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.Client(), Options{BaseURL: srv.URL, PageLimit: 50, Logger: logger.Discard()})
}

func TestListServicesQuery(t *testing.T) {
	t.Parallel()

	var gotQuery atomic.Value
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/services" {
			http.NotFound(w, r)
			return
		}
		gotQuery.Store(r.URL.RawQuery)
		_, _ = io.WriteString(w, `{"services":[
			{"_id":"1","name":" Cut ","price":7500,"duration":30},
			{"_id":"2","name":"Color","price":15000,"duration":60.4},
			{"_id":"","name":""}
		]}`)
	})

	entries, err := svc.ListServices(context.Background(), "hair & beauty")
	if err != nil {
		t.Fatal(err)
	}
	if q := gotQuery.Load().(string); q != "category=hair+%26+beauty&isActive=true&limit=50" {
		t.Fatalf("query = %q", q)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Name != "Cut" || entries[0].PriceOrZero() != 7500 {
		t.Fatalf("first = %+v", entries[0])
	}
	if entries[1].DurationOrZero() != 60 {
		t.Fatalf("second duration = %d", entries[1].DurationOrZero())
	}

	if _, err := svc.ListServices(context.Background(), "all"); err != nil {
		t.Fatal(err)
	}
	if q := gotQuery.Load().(string); q != "isActive=true&limit=50" {
		t.Fatalf("all query = %q", q)
	}
}

func TestSearchServicesBareArray(t *testing.T) {
	t.Parallel()

	var gotPath atomic.Value
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.EscapedPath())
		_, _ = io.WriteString(w, `[{"_id":"9","name":"Deep tissue","price":9000}]`)
	})

	entries, err := svc.SearchServices(context.Background(), "deep tissue")
	if err != nil {
		t.Fatal(err)
	}
	if p := gotPath.Load().(string); p != "/api/services/search/deep%20tissue" {
		t.Fatalf("path = %q", p)
	}
	if len(entries) != 1 || entries[0].ID != "9" || entries[0].Duration != nil {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestListMessagesBothShapes(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"wrapped": `{"messages":[{"_id":"m1","status":"unread"},{"_id":"m2","status":"READ"}]}`,
		"bare":    `[{"_id":"m1","status":"unread"},{"_id":"m2","status":"READ"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			msgs, err := svc.ListMessages(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(msgs) != 2 || msgs[0].Status != "unread" || msgs[1].Status != "read" {
				t.Fatalf("messages = %+v", msgs)
			}
		})
	}
}

func TestListOrdersAndProducts(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders":
			_, _ = io.WriteString(w, `{"orders":[{"_id":"a","orderStatus":"Pending","customer":{"email":"x@y.z"},"totalAmount":1250}]}`)
		case "/api/products":
			_, _ = io.WriteString(w, `{"products":[{"_id":"p","name":"Oil","price":2000,"stock":0},{"_id":"q","name":"Wax","price":100}]}`)
		default:
			http.NotFound(w, r)
		}
	})

	orders, err := svc.ListOrders(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].Status != "pending" || orders[0].CustomerEmail != "x@y.z" || orders[0].Total != 1250 {
		t.Fatalf("orders = %+v", orders)
	}

	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 || products[0].Stock == nil || *products[0].Stock != 0 || products[1].Stock != nil {
		t.Fatalf("products = %+v", products)
	}
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Service category not found"}`)
	})

	_, err := svc.ListServices(context.Background(), "ghost")
	var apiErr *endpoints.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "Service category not found" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestMarkMessageRead(t *testing.T) {
	t.Parallel()

	type captured struct {
		method, path string
		body         map[string]string
	}
	seen := make(chan captured, 1)
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		c := captured{method: r.Method, path: r.URL.Path}
		_ = json.NewDecoder(r.Body).Decode(&c.body)
		seen <- c
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	if err := svc.MarkMessageRead(context.Background(), "m1"); err != nil {
		t.Fatal(err)
	}
	got := <-seen
	if got.method != http.MethodPut || got.path != "/api/messages/m1" || got.body["status"] != "read" {
		t.Fatalf("request = %+v", got)
	}
	if err := svc.MarkMessageRead(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestMutate(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var lastMethod, lastPath, lastType atomic.Value
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		lastMethod.Store(r.Method)
		lastPath.Store(r.URL.Path)
		lastType.Store(r.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"_id":"s1"}`)
	})
	ctx := context.Background()

	out, err := svc.Mutate(ctx, Mutation{Resource: Staff, Method: http.MethodPost, Body: map[string]string{"name": "Ann"}})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"_id":"s1"}` || lastPath.Load() != "/api/staff" || lastType.Load() != "application/json" {
		t.Fatalf("out=%s path=%v type=%v", out, lastPath.Load(), lastType.Load())
	}

	if _, err := svc.Mutate(ctx, Mutation{Resource: Products, Method: http.MethodDelete, ID: "p 1"}); err != nil {
		t.Fatal(err)
	}
	if lastMethod.Load() != http.MethodDelete || lastPath.Load() != "/api/products/p 1" {
		t.Fatalf("delete went to %v %v", lastMethod.Load(), lastPath.Load())
	}

	before := calls.Load()
	for _, bad := range []Mutation{
		{Resource: Customers, Method: http.MethodPut},
		{Resource: Customers, Method: http.MethodPost, ID: "x"},
		{Resource: Customers, Method: http.MethodPatch, ID: "x"},
		{Resource: "orders", Method: http.MethodPost},
	} {
		if _, err := svc.Mutate(ctx, bad); err == nil {
			t.Errorf("expected error for %+v", bad)
		}
	}
	if calls.Load() != before {
		t.Fatal("invalid mutation reached upstream")
	}
}

func TestParseResource(t *testing.T) {
	t.Parallel()

	if r, ok := ParseResource(" Staff "); !ok || r != Staff {
		t.Fatalf("got %q %v", r, ok)
	}
	if _, ok := ParseResource("orders"); ok {
		t.Fatal("orders accepted")
	}
}

func TestBreakerTripsOnServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	b := NewBreaker(svc, BreakerOptions{
		Name:         "test-trip",
		MinRequests:  3,
		FailureRatio: 0.5,
		OpenTimeout:  time.Minute,
		Logger:       logger.Discard(),
	})
	ctx := context.Background()

	for range 3 {
		if _, err := b.ListOrders(ctx); err == nil {
			t.Fatal("expected upstream error")
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v", b.State())
	}

	n := calls.Load()
	if _, err := b.ListOrders(ctx); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want ErrOpenState", err)
	}
	if calls.Load() != n {
		t.Fatal("open breaker reached upstream")
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	b := NewBreaker(svc, BreakerOptions{
		Name:         "test-4xx",
		MinRequests:  2,
		FailureRatio: 0.1,
		Logger:       logger.Discard(),
	})

	for range 5 {
		_, err := b.SearchServices(context.Background(), "x")
		var apiErr *endpoints.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("err = %v", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Fatalf("state = %v", b.State())
	}
}
