// Package metric provides Prometheus instrumentation for the validation and
// diff engines.
//
// MetricsRegistry owns a private Prometheus registry pre-loaded with the core
// metrics (validation runs, durations, reported issues, diff batches) plus the
// Go runtime collectors. Callers attach their own collectors through the
// Registrar interface, and Server exposes the registry for scraping:
//
//	registry := metric.NewMetricsRegistry()
//	registry.CoreMetrics().RecordValidation("runtime", "valid")
//
//	server := metric.NewServer(9090, "/metrics", registry)
//	go server.Start()
//	defer server.Stop()
//
// All metrics live under the "flowcore" namespace.
package metric
