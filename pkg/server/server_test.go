package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/copycheck/pkg/telemetry/health"
)

func TestHandlerRoutes(t *testing.T) {
	checker := health.New(time.Second)
	checker.RegisterCheck("cache", func(context.Context) error { return nil })

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "copycheck_rows_total 3\n")
	})

	srv := New(Options{
		Metrics:     metrics,
		MetricsPath: "/custom-metrics",
		Health:      checker,
		Version:     "1.2.3",
		Commit:      "abc",
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/custom-metrics", http.StatusOK, "copycheck_rows_total"},
		{"/health", http.StatusOK, `"ok"`},
		{"/ready", http.StatusOK, "cache"},
		{"/version", http.StatusOK, "1.2.3"},
		{"/metrics", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", body, tt.wantBody)
			}
		})
	}
}

func TestReadyReportsFailingCheck(t *testing.T) {
	checker := health.New(time.Second)
	checker.RegisterCheck("history", func(context.Context) error { return errors.New("database is locked") })

	srv := New(Options{Health: checker})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(rec.Body.String(), "database is locked") {
		t.Errorf("body = %q, want the check error", rec.Body.String())
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(New(Options{}).logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestStartAndShutdown(t *testing.T) {
	srv := New(Options{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !srv.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("server did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Get("http://" + srv.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() = %v, want nil after cancel", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestStartTwice(t *testing.T) {
	srv := New(Options{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.Start(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for !srv.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("server did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := srv.Start(ctx); err == nil {
		t.Error("second Start() = nil, want error")
	}
}
