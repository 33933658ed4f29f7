package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(cfg)
	t.Cleanup(rl.Stop)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllow(t *testing.T) {
	rl, now := newTestLimiter(t, Config{RequestsPerMinute: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.1.1.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.1.1.1") {
		t.Fatal("4th request should be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatal("other clients are not affected")
	}
	if got := rl.RetryAfter("1.1.1.1"); got != 60 {
		t.Errorf("RetryAfter = %d, want 60", got)
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("1.1.1.1") {
		t.Fatal("window should reset after a minute")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 1 || m.ClientCount != 2 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, Config{RequestsPerMinute: 3})
	rl.Allow("1.1.1.1")
	*now = now.Add(11 * time.Minute)
	rl.Allow("2.2.2.2")

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients = %d, want 1", rl.ActiveClients())
	}
}

func TestMiddlewareLimitsConfiguredMethods(t *testing.T) {
	rl, _ := newTestLimiter(t, Config{RequestsPerMinute: 1, Methods: []string{http.MethodPost}})
	h := rl.Middleware(func(*http.Request) string { return "1.1.1.1" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodPost, http.StatusNoContent},
		{http.MethodPost, http.StatusTooManyRequests},
		{http.MethodGet, http.StatusNoContent},
		{http.MethodGet, http.StatusNoContent},
	}
	for i, tt := range tests {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tt.method, "/transactions", nil))
		if rr.Code != tt.want {
			t.Errorf("request %d (%s): status = %d, want %d", i, tt.method, rr.Code, tt.want)
		}
		if rr.Code == http.StatusTooManyRequests && rr.Header().Get("Retry-After") == "" {
			t.Errorf("request %d: missing Retry-After", i)
		}
	}
}

func TestMiddlewareOnLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, Config{RequestsPerMinute: 1})
	called := false
	h := rl.Middleware(func(*http.Request) string { return "ip" }, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if !called {
		t.Error("onLimit was not called")
	}
}

func TestNewLimiterDefaults(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()
	if rl.requestsPerMinute != 60 || rl.cleanupInterval != 5*time.Minute {
		t.Errorf("defaults not applied: %d %s", rl.requestsPerMinute, rl.cleanupInterval)
	}
	rl.Stop() // idempotent
}
