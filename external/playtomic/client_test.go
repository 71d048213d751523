package playtomic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mkm418/padel-intelligence/internal/domain/match"
	"github.com/mkm418/padel-intelligence/internal/platform/logging"
	"github.com/mkm418/padel-intelligence/internal/platform/resilience"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

const matchesPage = `[
  {"match_id":"m1","start_date":"2024-03-08T10:00:00","status":"PLAYED","tenant":{"tenant_id":"t1"},
   "teams":[{"team_id":"0","players":[{"user_id":"p1","name":"Ana"}]},{"team_id":"1","players":[{"user_id":"p2","name":"Bea"}]}]},
  {"match_id":"m2","start_date":"2024-03-08T12:00:00","status":"PLAYED","tenant":{"tenant_id":"t1","tenant_name":"Club Provided"},
   "teams":[{"team_id":"0","players":[]},{"team_id":"1","players":[]}]},
  {"match_id":"m3","start_date":"2024-03-09T12:00:00","status":"CANCELED",
   "teams":[{"team_id":"0","players":[]},{"team_id":"1","players":[]}]}
]`

func newTestClient(t *testing.T, serverURL string, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	c := NewClient(ClientConfig{
		BaseURL:        serverURL,
		Token:          "secret-token",
		Timeout:        2 * time.Second,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
	c.retryBackoff = time.Millisecond
	return c
}

func TestClient_FetchPage_QueryAndTenantNames(t *testing.T) {
	t.Parallel()

	var tenantCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		switch r.URL.Path {
		case "/matches":
			q := r.URL.Query()
			if q.Get("tenant_id") != "t1" || q.Get("page") != "2" || q.Get("size") != "50" {
				t.Errorf("unexpected paging query: %s", r.URL.RawQuery)
			}
			if q.Get("from_start_date") != "2024-03-07T10:00:00" || q.Get("sort") != "start_date,ASC" || q.Get("sport_id") != "PADEL" {
				t.Errorf("unexpected filter query: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(matchesPage))
		case "/tenants/t1":
			tenantCalls.Add(1)
			_, _ = w.Write([]byte(`{"tenant_id":"t1","tenant_name":"Club A"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, resilience.CircuitBreakerConfig{})
	req := match.PageRequest{TenantID: "t1", Since: "2024-03-07T10:00:00", Page: 2, Size: 50}

	items, err := client.FetchPage(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch page: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 matches, got=%d", len(items))
	}
	if items[0].Tenant.TenantName != "Club A" {
		t.Fatalf("expected looked-up tenant name, got=%q", items[0].Tenant.TenantName)
	}
	if items[1].Tenant.TenantName != "Club Provided" {
		t.Fatalf("provided tenant name must be kept, got=%q", items[1].Tenant.TenantName)
	}
	if items[2].Tenant == nil || items[2].Tenant.TenantID != "t1" || items[2].Tenant.TenantName != "Club A" {
		t.Fatalf("missing tenant must fall back to the requested tenant, got=%+v", items[2].Tenant)
	}

	if _, err := client.FetchPage(context.Background(), req); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if got := tenantCalls.Load(); got != 1 {
		t.Fatalf("expected tenant lookup to be cached, got %d calls", got)
	}
}

func TestClient_FetchPage_RejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://127.0.0.1:0", resilience.CircuitBreakerConfig{})
	if _, err := client.FetchPage(context.Background(), match.PageRequest{Size: 10}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing tenant, got %v", err)
	}
	if _, err := client.FetchPage(context.Background(), match.PageRequest{TenantID: "t1"}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero size, got %v", err)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: usecase.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: usecase.ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, want: usecase.ErrNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, resilience.CircuitBreakerConfig{})
			_, err := client.FetchPage(context.Background(), match.PageRequest{TenantID: "t1", Size: 10})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"matches":[]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, MaxRetries: 1, Logger: logging.NewNop()})
	client.retryBackoff = time.Millisecond

	items, err := client.FetchPage(context.Background(), match.PageRequest{TenantID: "t1", Size: 10})
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if len(items) != 0 || calls.Load() != 2 {
		t.Fatalf("unexpected result items=%d calls=%d", len(items), calls.Load())
	}
}

func TestClient_CircuitBreakerOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
	req := match.PageRequest{TenantID: "t1", Size: 10}

	for i := 0; i < 2; i++ {
		_, err := client.FetchPage(context.Background(), req)
		if err == nil || errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("attempt %d: expected provider error, got %v", i, err)
		}
	}

	_, err := client.FetchPage(context.Background(), req)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("open circuit must not reach the server, got %d calls", got)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(`Get "http://x/matches": token secret-token rejected`, "secret-token")
	if strings.Contains(got, "secret-token") || !strings.Contains(got, "REDACTED") {
		t.Fatalf("token not redacted: %q", got)
	}
	if got := sanitizeSensitiveText("  plain ", ""); got != "plain" {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
}
