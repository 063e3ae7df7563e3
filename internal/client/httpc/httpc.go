package httpc

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"
)

type Options struct {
	Timeout             time.Duration // whole request, 0 means none
	MaxIdleConnsPerHost int

	// Jar overrides the default in-memory jar, e.g. to share a logged-in
	// admin session between two clients.
	Jar http.CookieJar
}

const (
	dialTimeout   = 10 * time.Second
	headerTimeout = 15 * time.Second
)

// New returns a client that keeps upstream session cookies between calls,
// the way a browser sends credentials with every request.
func New(opts Options) *http.Client {
	jar := opts.Jar
	if jar == nil {
		// nil options never fail
		jar, _ = cookiejar.New(nil)
	}

	perHost := opts.MaxIdleConnsPerHost
	if perHost <= 0 {
		perHost = 20
	}

	rh := headerTimeout
	if opts.Timeout > 0 && opts.Timeout < rh {
		rh = opts.Timeout
	}

	dialer := &net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Timeout: opts.Timeout,
		Jar:     jar,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   dialTimeout,
			ResponseHeaderTimeout: rh,
			ExpectContinueTimeout: time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   perHost,
			IdleConnTimeout:       90 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}
