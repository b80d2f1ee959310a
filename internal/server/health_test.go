package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleRobots(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/plain" {
		t.Fatalf("expected Content-Type text/plain, got %q", ct)
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("expected Cache-Control no-store, got %q", cc)
	}
	if got := rr.Body.String(); got != robotsTxt {
		t.Fatalf("unexpected body, got %q", got)
	}
}

func TestReadyzFollowsLifecycle(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	check := func(want int) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		if rr.Code != want {
			t.Fatalf("expected %d, got %d", want, rr.Code)
		}
	}

	check(http.StatusServiceUnavailable)
	srv.ready.Store(true)
	check(http.StatusOK)
	srv.ready.Store(false)
	check(http.StatusServiceUnavailable)
}
