// Package health serves liveness, readiness and version endpoints for the
// long-running copycheck commands (watch and schedule).
//
// Components register checks by name; readiness runs them concurrently with
// a per-check timeout:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("cache", store.Ping)
//	checker.RegisterCheck("history", historyStore.Ping)
//	health.Mount(mux, checker, version, commit, 5)
package health
