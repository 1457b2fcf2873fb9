package parallel

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Schedule selects how chunks of the index range are handed to workers.
type Schedule int

const (
	// Static assigns chunk k to worker k mod W before the loop starts.
	Static Schedule = iota
	// Dynamic lets idle workers claim the next fixed-size chunk.
	Dynamic
	// Guided lets idle workers claim chunks proportional to the remaining
	// work, shrinking towards the minimum chunk size.
	Guided
)

const (
	// MaxChunks bounds the number of chunk partials held in memory at once.
	// Chunk sizes are raised as needed to stay under it.
	MaxChunks = 1 << 20

	dynamicChunksPerWorker = 16
	guidedChunksPerWorker  = 1024
)

// ErrUnknownSchedule is returned by ParseSchedule for unrecognised names.
var ErrUnknownSchedule = errors.New("unknown schedule")

// String returns the lower-case schedule name.
func (s Schedule) String() string {
	switch s {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Guided:
		return "guided"
	default:
		return fmt.Sprintf("schedule(%d)", int(s))
	}
}

// ParseSchedule converts a schedule name into a Schedule.
func ParseSchedule(name string) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "static", "":
		return Static, nil
	case "dynamic":
		return Dynamic, nil
	case "guided":
		return Guided, nil
	default:
		return Static, fmt.Errorf("%w: %q", ErrUnknownSchedule, name)
	}
}

// Schedules lists every schedule name, for flag help and shell completion.
func Schedules() []string {
	return []string{Static.String(), Dynamic.String(), Guided.String()}
}

// ReduceOptions configures a Reduce call.
type ReduceOptions struct {
	// Workers is the number of goroutines folding chunks. Must be >= 1.
	Workers int
	// Schedule picks the chunk hand-out policy.
	Schedule Schedule
	// Chunk is the chunk size for Static and Dynamic, and the minimum chunk
	// size for Guided. Zero selects DefaultChunk.
	Chunk int64
}

// DefaultChunk returns the chunk size used when none is configured.
func DefaultChunk(n int64, workers int, s Schedule) int64 {
	w := int64(max(workers, 1))
	var c int64
	switch s {
	case Dynamic:
		c = n / (w * dynamicChunksPerWorker)
	case Guided:
		c = n / (w * guidedChunksPerWorker)
	default:
		c = ceilDiv(n, w)
	}
	return max(c, 1)
}

// ceilDiv returns ⌈a/b⌉ for a >= 0 and b > 0 without forming a+b.
func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a-1)/b + 1
}

func effectiveChunk(n int64, opts ReduceOptions) int64 {
	c := opts.Chunk
	if c <= 0 {
		c = DefaultChunk(n, opts.Workers, opts.Schedule)
	}
	if floor := ceilDiv(n, MaxChunks); c < floor {
		c = floor
	}
	return c
}

type chunkPartial[T any] struct {
	lo    int64
	value T
}

// Reduce folds the index range [0, n) in parallel.
//
// The range is cut into chunks; body(worker, lo, hi) computes the partial for
// one chunk [lo, hi). Partials are then combined in ascending chunk order
// starting from identity. Because chunk boundaries depend only on n, the
// options and the worker count, and never on which worker ran a chunk, the
// result is the same on every call with the same arguments.
//
// The first error returned by body stops further chunk claims; Reduce waits
// for every worker before returning it.
func Reduce[T any](n int64, opts ReduceOptions, identity T, body func(worker int, lo, hi int64) (T, error), combine func(a, b T) T) (T, error) {
	if n <= 0 {
		return identity, nil
	}
	if opts.Workers < 1 {
		return identity, fmt.Errorf("reduce: workers must be >= 1, got %d", opts.Workers)
	}
	chunk := effectiveChunk(n, opts)

	var (
		partials []chunkPartial[T]
		err      error
	)
	switch opts.Schedule {
	case Guided:
		partials, err = reduceGuided(n, chunk, opts.Workers, body)
	case Dynamic:
		partials, err = reduceFixed(n, chunk, opts.Workers, true, body)
	default:
		partials, err = reduceFixed(n, chunk, opts.Workers, false, body)
	}
	if err != nil {
		return identity, err
	}

	acc := identity
	for _, p := range partials {
		acc = combine(acc, p.value)
	}
	return acc, nil
}

// reduceFixed handles Static and Dynamic: chunk k is [k*chunk, (k+1)*chunk).
func reduceFixed[T any](n, chunk int64, workers int, dynamic bool, body func(int, int64, int64) (T, error)) ([]chunkPartial[T], error) {
	numChunks := ceilDiv(n, chunk)
	partials := make([]chunkPartial[T], numChunks)

	var (
		next    atomic.Int64
		stopped atomic.Bool
		errs    ErrorCollector
		g       errgroup.Group
	)
	run := func(w int, k int64) bool {
		lo := k * chunk
		hi := lo + min(chunk, n-lo)
		v, err := body(w, lo, hi)
		if err != nil {
			errs.SetError(err)
			stopped.Store(true)
			return false
		}
		partials[k] = chunkPartial[T]{lo: lo, value: v}
		return true
	}

	for w := range workers {
		g.Go(func() error {
			if dynamic {
				for !stopped.Load() {
					k := next.Add(1) - 1
					if k >= numChunks || !run(w, k) {
						return nil
					}
				}
				return nil
			}
			for k := int64(w); k < numChunks && !stopped.Load(); k += int64(workers) {
				if !run(w, k) {
					return nil
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return partials, nil
}

// reduceGuided hands out chunks of max(remaining/(2*workers), minChunk).
// Claims are serialized by CAS on the shared position, so the sequence of
// chunk boundaries is the same whichever worker wins each claim.
func reduceGuided[T any](n, minChunk int64, workers int, body func(int, int64, int64) (T, error)) ([]chunkPartial[T], error) {
	var (
		pos      atomic.Int64
		stopped  atomic.Bool
		errs     ErrorCollector
		mu       sync.Mutex
		partials []chunkPartial[T]
		g        errgroup.Group
	)
	claim := func() (lo, hi int64, ok bool) {
		for {
			cur := pos.Load()
			if cur >= n {
				return 0, 0, false
			}
			size := max((n-cur)/int64(2*workers), minChunk)
			end := cur + min(size, n-cur)
			if pos.CompareAndSwap(cur, end) {
				return cur, end, true
			}
		}
	}

	for w := range workers {
		g.Go(func() error {
			for !stopped.Load() {
				lo, hi, ok := claim()
				if !ok {
					return nil
				}
				v, err := body(w, lo, hi)
				if err != nil {
					errs.SetError(err)
					stopped.Store(true)
					return nil
				}
				mu.Lock()
				partials = append(partials, chunkPartial[T]{lo: lo, value: v})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := errs.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(partials, func(a, b chunkPartial[T]) int {
		switch {
		case a.lo < b.lo:
			return -1
		case a.lo > b.lo:
			return 1
		}
		return 0
	})
	return partials, nil
}
