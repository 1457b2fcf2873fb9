package progress

import (
	"sync"

	"github.com/rs/zerolog"
)

// ProgressObserver is notified of progress for a given integrator index.
type ProgressObserver interface {
	Update(calcIndex int, progress float64)
}

// ProgressSubject keeps a set of observers and hands out callbacks bound to
// a snapshot of that set.
type ProgressSubject struct {
	mu        sync.RWMutex
	observers []ProgressObserver
}

// NewProgressSubject returns an empty subject.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{}
}

// Register adds an observer. It does not affect callbacks already frozen.
func (s *ProgressSubject) Register(o ProgressObserver) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Len returns the number of registered observers.
func (s *ProgressSubject) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Freeze returns a callback that notifies the observers registered at the
// time of the call. The callback is safe for concurrent use.
func (s *ProgressSubject) Freeze(calcIndex int) ProgressCallback {
	s.mu.RLock()
	snapshot := make([]ProgressObserver, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.RUnlock()

	if len(snapshot) == 0 {
		return func(float64) {}
	}
	return func(v float64) {
		for _, o := range snapshot {
			o.Update(calcIndex, v)
		}
	}
}

// ChannelObserver forwards updates onto a channel.
type ChannelObserver struct {
	ch chan<- ProgressUpdate
}

// NewChannelObserver returns an observer writing to ch.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Update sends the update, dropping intermediate values when the channel is full.
func (o *ChannelObserver) Update(calcIndex int, v float64) {
	if o.ch == nil {
		return
	}
	ChannelCallback(o.ch, calcIndex)(v)
}

// LoggingObserver logs progress at debug level, at most once per threshold step.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64

	mu   sync.Mutex
	last map[int]float64
}

// NewLoggingObserver returns an observer logging whenever progress advanced
// by at least threshold since the last logged value.
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	return &LoggingObserver{logger: logger, threshold: threshold, last: make(map[int]float64)}
}

// Update logs the update if it crossed the threshold or completed the run.
func (o *LoggingObserver) Update(calcIndex int, v float64) {
	o.mu.Lock()
	prev, seen := o.last[calcIndex]
	if seen && v-prev < o.threshold && v < 1.0 {
		o.mu.Unlock()
		return
	}
	o.last[calcIndex] = v
	o.mu.Unlock()

	o.logger.Debug().Int("integrator", calcIndex).Float64("progress", v).Msg("integration progress")
}
