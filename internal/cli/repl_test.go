package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/parallel"
)

func newTestREPL(input string) (*REPL, *bytes.Buffer) {
	r := NewREPL(integration.NewDefaultFactory(), REPLConfig{
		Steps:   1000,
		Workers: 2,
		Timeout: time.Minute,
	})
	var out bytes.Buffer
	r.SetInput(strings.NewReader(input))
	r.SetOutput(&out)
	r.SetProgressReporter(orchestration.NullProgressReporter{})
	return r, &out
}

func TestNewREPL_Defaults(t *testing.T) {
	t.Parallel()

	r := NewREPL(integration.NewDefaultFactory(), REPLConfig{DefaultAlgo: "all"})
	if r.strategy != "post" {
		t.Errorf("strategy = %q, want post", r.strategy)
	}
	if r.config.Steps != integration.DefaultSteps {
		t.Errorf("steps = %d, want %d", r.config.Steps, integration.DefaultSteps)
	}
	if r.config.Workers < 1 {
		t.Errorf("workers = %d, want >= 1", r.config.Workers)
	}
	if r.config.Timeout <= 0 {
		t.Error("timeout should default to a positive value")
	}
}

func TestREPL_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains []string
		check    func(t *testing.T, r *REPL)
	}{
		{
			name:     "run current strategy",
			input:    "run\nexit\n",
			contains: []string{"Post-Reduction", "3.14159", "✓", "Goodbye!"},
		},
		{
			name:     "bare number runs",
			input:    "2_000\n",
			contains: []string{"2,000", "3.14159"},
			check: func(t *testing.T, r *REPL) {
				if r.config.Steps != 2000 {
					t.Errorf("steps = %d, want 2000", r.config.Steps)
				}
			},
		},
		{
			name:     "compare all strategies",
			input:    "compare 500\n",
			contains: []string{"Serial", "Post-Reduction", "Atomic Accumulation", "Runtime Reduction"},
		},
		{
			name:  "change settings",
			input: "steps 5000\nworkers 3\nstrategy atomic\nschedule guided\nstatus\n",
			contains: []string{
				"Steps set to:", "Workers set to:", "Strategy changed to:", "Schedule set to:",
				"Current settings:",
			},
			check: func(t *testing.T, r *REPL) {
				if r.config.Steps != 5000 || r.config.Workers != 3 {
					t.Errorf("config = %+v", r.config)
				}
				if r.strategy != "atomic" {
					t.Errorf("strategy = %q, want atomic", r.strategy)
				}
				if r.config.Schedule != parallel.Guided {
					t.Errorf("schedule = %v, want guided", r.config.Schedule)
				}
			},
		},
		{
			name:     "invalid input",
			input:    "steps 0\nworkers zero\nstrategy bogus\nschedule weird\nfrobnicate\n",
			contains: []string{"Invalid steps", "Invalid worker count", "Unknown strategy", "Unknown command"},
			check: func(t *testing.T, r *REPL) {
				if r.config.Steps != 1000 || r.config.Workers != 2 || r.strategy != "post" {
					t.Errorf("settings changed on invalid input: %+v %q", r.config, r.strategy)
				}
			},
		},
		{
			name:     "usage messages",
			input:    "steps\nworkers\nstrategy\nschedule\n",
			contains: []string{"Usage: steps", "Usage: workers", "Usage: strategy", "Usage: schedule"},
		},
		{
			name:     "list and help",
			input:    "list\nhelp\n",
			contains: []string{"Available strategies:", "reduce", "Available commands:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, out := newTestREPL(tt.input)
			r.Start(context.Background())

			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
			if tt.check != nil {
				tt.check(t, r)
			}
		})
	}
}

func TestREPL_StopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	r, out := newTestREPL("run\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Start(ctx)

	if strings.Contains(out.String(), "pi> ") {
		t.Errorf("prompt shown after cancellation:\n%s", out.String())
	}
}

func TestParseSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1000", 1000, false},
		{"1_000_000", 1_000_000, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSteps(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSteps(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSteps(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
