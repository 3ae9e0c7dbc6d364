// Package api hosts the HTTP server, middleware, and REST handlers for operator
// access. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/tasks and /v1/tasks/{task_id}/... for task control.
//   - GET /v1/tasks/{task_id}/status, /events, /results, and /export for reporting.
package api
