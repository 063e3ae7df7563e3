package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"shopfront/internal/metrics"
)

// Transport is the single method the endpoint clients need from an HTTP stack.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	HTTPClient    *http.Client
	Retries       int
	Concurrency   int           // max in-flight requests
	RatePerSecond float64       // 0 disables pacing
	Burst         int           // token bucket size when pacing
	BaseDelay     time.Duration // backoff base
	MaxDelay      time.Duration // backoff cap
	Logger        *slog.Logger
}

const maxRetryAfter = 60 * time.Second

func (o Options) validate() error {
	switch {
	case o.HTTPClient == nil:
		return errors.New("HTTPClient is nil")
	case o.Concurrency < 0:
		return errors.New("Concurrency must be >= 0")
	case o.Retries < 0:
		return errors.New("Retries must be >= 0")
	case o.RatePerSecond < 0:
		return errors.New("RatePerSecond must be >= 0")
	}
	return nil
}

// Build layers, from the wire outwards: http.Client, retry, rate, concurrency.
// Rate sits outside retry so a logical call waits for one token only.
func Build(opts Options) (Transport, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 300 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 8 * time.Second
	}

	var t Transport = opts.HTTPClient

	if opts.Retries > 0 {
		t = &RetryTransport{
			Base:       t,
			MaxRetries: opts.Retries,
			BaseDelay:  opts.BaseDelay,
			MaxDelay:   opts.MaxDelay,
			Log:        opts.Logger,
		}
	}
	if opts.RatePerSecond > 0 {
		t = NewRateTransport(t, opts.RatePerSecond, opts.Burst)
	}
	if opts.Concurrency > 0 {
		t = NewConcurrencyTransport(t, opts.Concurrency)
	}
	return t, nil
}

// RateTransport waits for a token before every request.
type RateTransport struct {
	Base    Transport
	Limiter *rate.Limiter
}

func NewRateTransport(base Transport, perSecond float64, burst int) *RateTransport {
	if burst <= 0 {
		burst = 1
	}
	return &RateTransport{Base: base, Limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (t *RateTransport) Do(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return t.Base.Do(req)
}

// ConcurrencyTransport caps the number of requests in flight.
type ConcurrencyTransport struct {
	Base Transport
	sem  *semaphore.Weighted
}

func NewConcurrencyTransport(base Transport, n int) *ConcurrencyTransport {
	if n <= 0 {
		n = 1
	}
	return &ConcurrencyTransport{Base: base, sem: semaphore.NewWeighted(int64(n))}
}

func (t *ConcurrencyTransport) Do(req *http.Request) (*http.Response, error) {
	if err := t.sem.Acquire(req.Context(), 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	return t.Base.Do(req)
}

// RetryTransport retries idempotent requests on network errors, 429 and 5xx.
// POST is sent once: a create must not be duplicated by a retry.
// When retries run out on a bad status the last response is returned as is,
// so the caller still sees the upstream error body.
type RetryTransport struct {
	Base       Transport
	MaxRetries int

	BaseDelay time.Duration
	MaxDelay  time.Duration

	Log *slog.Logger
}

func (r *RetryTransport) Do(req *http.Request) (*http.Response, error) {
	if !idempotent(req.Method) {
		return r.Base.Do(req)
	}

	l := r.Log
	if l == nil {
		l = slog.Default()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := req.Context().Err(); err != nil {
			return nil, err
		}

		cur, err := cloneForRetry(req)
		if err != nil {
			return nil, err
		}

		resp, err := r.Base.Do(cur)
		last := attempt == r.MaxRetries

		var wait time.Duration
		switch {
		case err != nil:
			if !shouldRetryError(err) || last {
				return nil, err
			}
			lastErr = err
			metrics.UpstreamRetries.WithLabelValues("network").Inc()
			l.Warn("retryable error",
				"attempt", attempt+1,
				"max_attempts", r.MaxRetries+1,
				"err", err,
				"url", req.URL.String(),
			)

		case shouldRetryStatus(resp.StatusCode) && !last:
			wait = retryAfter(resp.Header.Get("Retry-After"), time.Now())
			drain(resp)
			lastErr = fmt.Errorf("retryable status=%d", resp.StatusCode)
			metrics.UpstreamRetries.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
			l.Warn("retryable status",
				"attempt", attempt+1,
				"max_attempts", r.MaxRetries+1,
				"status", resp.StatusCode,
				"url", req.URL.String(),
			)

		default:
			return resp, nil
		}

		if wait <= 0 {
			wait = backoff(r.BaseDelay, r.MaxDelay, attempt)
		}
		if err := sleepCtx(req.Context(), wait); err != nil {
			if lastErr != nil {
				return nil, fmt.Errorf("%w (after %v)", err, lastErr)
			}
			return nil, err
		}
	}
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

func shouldRetryError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 32*1024))
	_ = resp.Body.Close()
}

func backoff(base, maxDelay time.Duration, attempt int) time.Duration {
	d := base << attempt
	if d > maxDelay || d <= 0 {
		d = maxDelay
	}
	// jitter in [0.5d, 1.5d)
	return time.Duration(float64(d) * (0.5 + rand.Float64()))
}

// retryAfter understands both delay-seconds and HTTP-date forms, capped at a minute.
func retryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	var d time.Duration
	if sec, err := strconv.Atoi(v); err == nil {
		d = time.Duration(sec) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		d = at.Sub(now)
	}
	if d <= 0 {
		return 0
	}
	return min(d, maxRetryAfter)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func cloneForRetry(req *http.Request) (*http.Request, error) {
	cloned := req.Clone(req.Context())

	if req.Body == nil || req.Body == http.NoBody {
		return cloned, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("cannot retry request with body: GetBody is nil")
	}
	b, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("cannot retry request with body: %w", err)
	}
	cloned.Body = b
	return cloned, nil
}
