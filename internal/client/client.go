package client

import (
	"log/slog"
	"net/http"
	"time"

	"shopfront/internal/client/httpc"
	"shopfront/internal/client/transport"
)

type Transport = transport.Transport

type Options struct {
	Timeout     time.Duration
	Retries     int
	Concurrency int

	RatePerSecond float64
	Burst         int

	BaseDelay time.Duration
	MaxDelay  time.Duration

	Logger *slog.Logger
}

// Build assembles the outbound stack: cookie-aware http.Client, then
// retry, rate and concurrency layers.
func Build(opts Options) (Transport, error) {
	hc := NewHTTPClient(opts.Timeout, opts.Concurrency)
	return transport.Build(transport.Options{
		HTTPClient:    hc,
		Retries:       opts.Retries,
		Concurrency:   opts.Concurrency,
		RatePerSecond: opts.RatePerSecond,
		Burst:         opts.Burst,
		BaseDelay:     opts.BaseDelay,
		MaxDelay:      opts.MaxDelay,
		Logger:        opts.Logger,
	})
}

func NewHTTPClient(timeout time.Duration, concurrency int) *http.Client {
	return httpc.New(httpc.Options{Timeout: timeout, MaxIdleConnsPerHost: concurrency})
}
