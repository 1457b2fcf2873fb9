// Package integration implements parallel midpoint Riemann-sum integration
// over [0, 1].
//
// A run splits num_steps sample points across a pool of workers and combines
// the per-worker sums with one of several strategies:
//
//   - Serial: a single worker, used as the reference result.
//   - PostReduction: cyclic striding into per-worker partial sums that are
//     added in worker-index order after all workers finish. Bit-reproducible
//     for a fixed worker count.
//   - Atomic: cyclic striding, then one atomic add per worker into a shared
//     accumulator. Commit order is unspecified, so results may differ in the
//     last digits between runs.
//   - RuntimeReduction: the whole index range is handed to a chunked parallel
//     reduction with static, dynamic or guided scheduling.
//
// The worker count used for partitioning is always the size granted by the
// WorkerPool, which may be smaller than the request. All arithmetic is
// float64.
package integration
