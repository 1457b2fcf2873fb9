package integration

import (
	"github.com/rs/zerolog"

	"github.com/agbru/picalc/internal/parallel"
	"github.com/agbru/picalc/internal/progress"
)

// Visitor observes each evaluated index. It is called concurrently from all
// workers and slows the run down considerably; it exists for instrumentation.
type Visitor func(worker int, index int64)

type options struct {
	progress progress.ProgressCallback
	logger   zerolog.Logger
	limit    int
	schedule parallel.Schedule
	chunk    int64
	visitor  Visitor
}

// Option configures a single Integrate call.
type Option func(*options)

func defaultOptions() options {
	return options{logger: zerolog.Nop()}
}

// WithProgress reports the completed fraction of the run to cb.
func WithProgress(cb progress.ProgressCallback) Option {
	return func(o *options) { o.progress = cb }
}

// WithLogger sets the logger used for run-level debug events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithConcurrencyLimit lowers the maximum pool size below the hardware
// concurrency. Zero keeps the default.
func WithConcurrencyLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithSchedule selects the chunk schedule for RuntimeReduction. A chunk of 0
// lets the schedule pick its default. Other strategies ignore it.
func WithSchedule(s parallel.Schedule, chunk int64) Option {
	return func(o *options) {
		o.schedule = s
		o.chunk = chunk
	}
}

// WithVisitor installs an index visitor.
func WithVisitor(v Visitor) Option {
	return func(o *options) { o.visitor = v }
}
