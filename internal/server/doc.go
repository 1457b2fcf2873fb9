// Package server exposes the integrators over HTTP.
//
// Routes:
//
//	GET /integrate?steps=&workers=&strategy=  run one strategy (or "all") and return JSON
//	GET /health                               liveness check
//	GET /metrics                              Prometheus exposition
//
// Every route goes through SecurityMiddleware and the request metrics
// middleware. Request parameters are bounded by SecurityConfig.
package server
