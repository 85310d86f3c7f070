package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	if got := New(0).checkTimeout; got != 5*time.Second {
		t.Errorf("default timeout = %v, want 5s", got)
	}
	if got := New(time.Second).checkTimeout; got != time.Second {
		t.Errorf("custom timeout = %v, want 1s", got)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{
			name:       "no checks is ready",
			checks:     nil,
			wantStatus: "ready",
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"cache":   func(context.Context) error { return nil },
				"history": func(context.Context) error { return nil },
			},
			wantStatus: "ready",
		},
		{
			name: "one unhealthy",
			checks: map[string]CheckFunc{
				"cache":   func(context.Context) error { return errors.New("connection refused") },
				"history": func(context.Context) error { return nil },
			},
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())
	if status.Checks["slow"].Message != "health check timeout" {
		t.Errorf("expected timeout, got %+v", status.Checks["slow"])
	}
}

func TestNames(t *testing.T) {
	checker := New(0)
	checker.RegisterCheck("history", func(context.Context) error { return nil })
	checker.RegisterCheck("cache", func(context.Context) error { return nil })

	names := checker.Names()
	if len(names) != 2 || names[0] != "cache" || names[1] != "history" {
		t.Errorf("Names() = %v", names)
	}
}

func TestMount(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("cache", func(context.Context) error { return errors.New("down") })

	mux := http.NewServeMux()
	Mount(mux, checker, "1.2.3", "abc", 0)

	tests := []struct {
		path string
		code int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusServiceUnavailable},
		{"/version", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.code {
			t.Errorf("%s: status = %d, want %d", tt.path, rec.Code, tt.code)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if info.Version != "1.2.3" || info.GoVersion == "" {
		t.Errorf("unexpected version info %+v", info)
	}
}

func TestLivenessHandler_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	New(0).LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRateLimited(t *testing.T) {
	calls := 0
	handler := RateLimited(func(w http.ResponseWriter, r *http.Request) { calls++ }, 1)

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		codes[i] = rec.Code
	}

	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request code = %d, want 429", codes[2])
	}
}
