// Package api hosts the HTTP server, middleware, and handlers for the SWOT
// analyzer. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /analyze (and /v1/analyze) to analyze one URL; requires a bearer
//     token unless auth is disabled.
//   - GET / serves the bundled front end when server.static_dir is set.
package api
