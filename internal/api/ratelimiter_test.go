package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow(string) bool {
	return s.allow
}

func requestFrom(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	return req
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	middleware.ServeHTTP(rec, requestFrom("192.0.2.1:1234"))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimitMiddlewareSeparatesClients(t *testing.T) {
	middleware := rateLimitMiddleware(newClientLimiter(1, 1), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(addr string) int {
		rec := httptest.NewRecorder()
		middleware.ServeHTTP(rec, requestFrom(addr))
		return rec.Code
	}

	if code := serve("192.0.2.1:1000"); code != http.StatusNoContent {
		t.Fatalf("expected first client to pass, got %d", code)
	}
	if code := serve("192.0.2.1:2000"); code != http.StatusTooManyRequests {
		t.Fatalf("expected same host on another port to share the bucket, got %d", code)
	}
	if code := serve("198.51.100.7:1000"); code != http.StatusNoContent {
		t.Fatalf("expected second client to have its own bucket, got %d", code)
	}
}

func TestClientLimiterDefaultsAndBound(t *testing.T) {
	limiter := newClientLimiter(0, 0)
	if !limiter.Allow("a") {
		t.Fatalf("expected first request to be allowed")
	}
	if limiter.Allow("a") {
		t.Fatalf("expected default burst of one")
	}

	for i := 0; i < maxTrackedClients+5; i++ {
		limiter.Allow(fmt.Sprintf("client-%d", i))
	}
	if got := limiter.tracked(); got > maxTrackedClients {
		t.Fatalf("expected at most %d tracked clients, got %d", maxTrackedClients, got)
	}
}

func TestClientKey(t *testing.T) {
	if got := clientKey(requestFrom("[2001:db8::1]:443")); got != "2001:db8::1" {
		t.Fatalf("expected IPv6 host, got %s", got)
	}
	if got := clientKey(requestFrom("unix-socket")); got != "unix-socket" {
		t.Fatalf("expected raw address fallback, got %s", got)
	}
}
