// Package metrics collects runtime memory snapshots and exposes Prometheus
// instruments for integration runs on a dedicated registry.
package metrics
