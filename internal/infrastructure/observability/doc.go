// Package observability provides the logging, metrics and tracing
// infrastructure shared by the API, the Lambda handler and the CLI.
//
// # Key Components
//
//   - NewLogger builds the zap logger with an AtomicLevel that the config
//     watcher can adjust at runtime.
//   - Collector owns a private Prometheus registry with the HTTP, business and
//     store metrics. MetricsMiddleware records HTTP traffic into it.
//   - InitTracing installs an OpenTelemetry tracer provider; TracingMiddleware
//     opens a server span per request.
//   - InstrumentRepository decorates a repository.PokemonRepository with a
//     span and a db_operations_total sample per call.
//
// Integration example:
//
//	router.Use(observability.MetricsMiddleware(collector))
//	router.Use(observability.TracingMiddleware("pokedex-backend"))
//	repo = observability.InstrumentRepository(repo, collector)
package observability
