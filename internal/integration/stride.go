package integration

// Stride is the cyclic index assignment of one worker: indices
// Worker, Worker+Workers, Worker+2*Workers, ... below n.
// Over all workers in [0, Workers) every index is covered exactly once.
type Stride struct {
	Worker  int
	Workers int
}

// Count returns how many indices below n belong to this worker.
func (s Stride) Count(n int64) int64 {
	w := int64(s.Worker)
	if w >= n {
		return 0
	}
	return (n-w-1)/int64(s.Workers) + 1
}

// Index returns the k-th index owned by this worker. For k below Count(n)
// the result is below n.
func (s Stride) Index(k int64) int64 {
	return int64(s.Worker) + k*int64(s.Workers)
}
