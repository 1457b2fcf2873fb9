package tui

import (
	"time"

	"github.com/agbru/picalc/internal/orchestration"
)

// ProgressMsg carries one aggregated progress update.
type ProgressMsg struct {
	CalculatorIndex int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// ProgressDoneMsg is sent once the progress channel is closed.
type ProgressDoneMsg struct{}

// ComparisonResultsMsg carries the per-strategy results of a job.
type ComparisonResultsMsg struct {
	Results []orchestration.RunResult
}

// FinalResultMsg carries the reference result.
type FinalResultMsg struct {
	Result  orchestration.RunResult
	Steps   int64
	Verbose bool
	Details bool
}

// ErrorMsg reports a failed job.
type ErrorMsg struct {
	Err      error
	Duration time.Duration
}

// IndicatorsMsg carries indicators computed off the UI goroutine.
type IndicatorsMsg struct {
	Indicators *Indicators
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// MemStatsMsg is a runtime memory sample.
type MemStatsMsg struct {
	Alloc        uint64
	HeapInuse    uint64
	NumGC        uint32
	PauseTotalNs uint64
	NumGoroutine int
}

// SysStatsMsg is a system-wide CPU and memory sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// CalculationCompleteMsg ends a job. Generation discards messages from a
// job that was reset.
type CalculationCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg is sent when the job context ends.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
