package network

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"venue-collections/src/helpers"
	"venue-collections/src/logger"
	"venue-collections/src/models"
)

func newTestManager(retries int) *AsyncNetworkManager {
	cfg := &models.MConfig{}
	cfg.Network.RequestTimeout = 5
	cfg.Network.MaxRetries = retries
	cfg.Network.UserAgent = "collections-test"

	nm := NewAsyncNetworkManager(cfg, logger.NewLoggerWithWriter(io.Discard, "ERROR", "test"))
	nm.Backoff = func(int) time.Duration { return 0 }
	return nm
}

// -----------------------------------------------------------------------------

func TestGetSendsParamsAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "spot" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != "collections-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(`["BTC/USD"]`))
	}))
	defer srv.Close()

	body, err := newTestManager(0).Get(context.Background(), srv.URL, map[string]string{"type": "spot"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != `["BTC/USD"]` {
		t.Errorf("Get() = %s", body)
	}
}

// -----------------------------------------------------------------------------

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	if _, err := newTestManager(2).Get(context.Background(), srv.URL, nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

// -----------------------------------------------------------------------------

func TestGetGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestManager(2).Get(context.Background(), srv.URL, nil)
	var netErr *helpers.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Get() error = %v, want *NetworkError", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

// -----------------------------------------------------------------------------

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := newTestManager(3).Get(context.Background(), srv.URL, nil); err == nil {
		t.Fatal("Get() succeeded on 404")
	}
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want 1", calls.Load())
	}
}

// -----------------------------------------------------------------------------

func TestGetHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	nm := newTestManager(5)
	nm.Backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := nm.Get(ctx, srv.URL, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Get() error = %v, want context.DeadlineExceeded", err)
	}
}

// -----------------------------------------------------------------------------

func newProxiedManager(retries int, proxies ...string) *AsyncNetworkManager {
	cfg := &models.MConfig{}
	cfg.Network.Enabled = true
	cfg.Network.Proxies = proxies
	cfg.Network.RequestTimeout = 5
	cfg.Network.MaxRetries = retries

	nm := NewAsyncNetworkManager(cfg, logger.NewLoggerWithWriter(io.Discard, "ERROR", "test"))
	nm.Backoff = func(int) time.Duration { return 0 }
	return nm
}

// -----------------------------------------------------------------------------

func TestGetRotatesProxyOnRetry(t *testing.T) {
	var blockedHits, healthyHits atomic.Int32
	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		blockedHits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer blocked.Close()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		healthyHits.Add(1)
		// A forward proxy receives the absolute target URL.
		if r.URL.Host != "venue.invalid" {
			t.Errorf("proxied request host = %q", r.URL.Host)
		}
		w.Write([]byte(`["BTC/USD"]`))
	}))
	defer healthy.Close()

	nm := newProxiedManager(1, blocked.URL, healthy.URL)
	body, err := nm.Get(context.Background(), "http://venue.invalid/markets", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != `["BTC/USD"]` {
		t.Errorf("Get() = %s", body)
	}
	if blockedHits.Load() != 1 || healthyHits.Load() != 1 {
		t.Errorf("proxy hits = %d blocked, %d healthy, want 1 and 1", blockedHits.Load(), healthyHits.Load())
	}
}

// -----------------------------------------------------------------------------

func TestGetConcurrentWithProxyRotation(t *testing.T) {
	var hits atomic.Int32
	proxy := func() *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
	}
	p1, p2 := proxy(), proxy()
	defer p1.Close()
	defer p2.Close()

	nm := newProxiedManager(3, p1.URL, p2.URL)
	client := nm.Client

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = nm.Get(context.Background(), "http://venue.invalid/markets", nil)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		var netErr *helpers.NetworkError
		if !errors.As(err, &netErr) {
			t.Errorf("Get() #%d error = %v, want *NetworkError", i, err)
		}
	}
	if hits.Load() != 16 {
		t.Errorf("proxies saw %d requests, want 16", hits.Load())
	}
	if nm.Client != client {
		t.Error("rotation replaced the shared client")
	}
}
