package health

import (
	"encoding/json"
	"net/http"
	"runtime"

	"golang.org/x/time/rate"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// LivenessHandler returns an HTTP handler for the liveness endpoint.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler returns an HTTP handler for the readiness endpoint.
//
// Returns:
//   - 200 OK: every component check passed
//   - 503 Service Unavailable: at least one component is unhealthy
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckReadiness(r.Context())
		code := http.StatusOK
		if status.Status != "ready" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status)
	}
}

// VersionHandler returns an HTTP handler for the version endpoint.
func VersionHandler(version, commit string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, info)
	}
}

// Mount registers /health, /ready and /version on mux. Readiness runs
// real component checks, so it is rate limited to readyPerSecond.
func Mount(mux *http.ServeMux, checker *Checker, version, commit string, readyPerSecond float64) {
	mux.HandleFunc("/health", checker.LivenessHandler())
	mux.HandleFunc("/ready", RateLimited(checker.ReadinessHandler(), readyPerSecond))
	mux.HandleFunc("/version", VersionHandler(version, commit))
}

// RateLimited wraps a handler with a token bucket limiter. Requests over
// the limit get 429. A non-positive rate disables limiting.
func RateLimited(handler http.HandlerFunc, perSecond float64) http.HandlerFunc {
	if perSecond <= 0 {
		return handler
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))

	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		handler(w, r)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(v)
	}
}
