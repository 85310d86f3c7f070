// Package server runs the telemetry HTTP endpoint of the long-running
// watch and schedule commands.
//
// # Routes
//
//	/metrics   Prometheus exposition (path configurable)
//	/health    liveness, always 200 while serving
//	/ready     runs the registered component checks, rate limited
//	/version   build version and commit
//
// # Basic Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("cache", guard.Check)
//
//	srv := server.New(server.Options{
//	    Addr:        ":9090",
//	    Metrics:     collector.Handler(),
//	    MetricsPath: cfg.Telemetry.Metrics.Path,
//	    Health:      checker,
//	})
//
//	// Blocks until ctx is canceled, then shuts down gracefully.
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Middleware
//
// Requests pass through panic recovery (outermost) and request logging.
// Successful requests are logged at debug level so scrapes do not flood the
// log.
package server
