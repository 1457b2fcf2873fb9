// Package parallel holds the low-level concurrency primitives used by the
// integrators: first-error collection, an atomic float64 accumulator,
// cache-line padded accumulator slots and a chunked range reduction with
// static, dynamic and guided scheduling.
package parallel
