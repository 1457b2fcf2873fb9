package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/integration"
)

// newTestApp builds an application with a profile path that cannot exist,
// so a calibration file in the user's home never leaks into the test.
func newTestApp(t *testing.T, args ...string) (*Application, *bytes.Buffer) {
	t.Helper()
	profile := filepath.Join(t.TempDir(), "profile.json")
	var errBuf bytes.Buffer
	full := append([]string{"picalc", "--calibration-profile", profile, "--no-color"}, args...)
	a, err := New(full, &errBuf)
	if err != nil {
		t.Fatalf("New(%v) error: %v\nstderr: %s", args, err, errBuf.String())
	}
	return a, &errBuf
}

func TestNew_Defaults(t *testing.T) {
	a, _ := newTestApp(t)
	if a.Factory == nil {
		t.Fatal("default factory should be set")
	}
	if a.Config.Workers < 1 {
		t.Errorf("workers = %d, want adaptive default >= 1", a.Config.Workers)
	}
	if a.Config.Algo != "all" {
		t.Errorf("algo = %q, want all", a.Config.Algo)
	}
}

func TestNew_WithFactory(t *testing.T) {
	f := integration.NewDefaultFactory()
	a, err := New([]string{"picalc", "--calibration-profile", filepath.Join(t.TempDir(), "p.json")}, &bytes.Buffer{}, WithFactory(f))
	if err != nil {
		t.Fatal(err)
	}
	if a.Factory != f {
		t.Error("WithFactory should set the factory")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		helpErr    bool
		wantStderr string
	}{
		{"help", []string{"picalc", "--help"}, true, "Usage"},
		{"invalid steps", []string{"picalc", "--steps", "0"}, false, "--steps must be positive"},
		{"unknown algo", []string{"picalc", "--algo", "magic"}, false, "unknown algorithm"},
		{"unknown flag", []string{"picalc", "--frobnicate"}, false, "frobnicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errBuf bytes.Buffer
			_, err := New(tt.args, &errBuf)
			if err == nil {
				t.Fatal("expected an error")
			}
			if IsHelpError(err) != tt.helpErr {
				t.Errorf("IsHelpError = %v, want %v", IsHelpError(err), tt.helpErr)
			}
			if !strings.Contains(errBuf.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, errBuf.String())
			}
		})
	}
}

func TestRun_Calculate(t *testing.T) {
	a, _ := newTestApp(t, "-n", "10000", "-w", "2", "--details")
	var out bytes.Buffer
	code := a.Run(context.Background(), &out)
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, want 0\n%s", code, out.String())
	}
	for _, want := range []string{
		"Execution Configuration",
		"Comparison Summary",
		"Global Status: Success",
		"pi ≈ 3.14159",
		"Memory Stats",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_Quiet(t *testing.T) {
	a, _ := newTestApp(t, "-n", "10000", "--algo", "post", "-q")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	line := strings.TrimSpace(out.String())
	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		t.Fatalf("quiet output %q is not a number", line)
	}
	if v < 3.14 || v > 3.15 {
		t.Errorf("value = %v, want ~pi", v)
	}
}

func TestRun_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pi.txt")
	a, _ := newTestApp(t, "-n", "1000", "--algo", "serial", "-o", path)
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "Result saved to") {
		t.Error("expected save confirmation")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "pi = 3.14") {
		t.Errorf("file content:\n%s", data)
	}
}

func TestRun_Timeout(t *testing.T) {
	a, _ := newTestApp(t, "-n", "1000", "--timeout", "1ns")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d\n%s", code, apperrors.ExitErrorTimeout, out.String())
	}
}

func TestRun_QuietTimeoutReportsOnStderr(t *testing.T) {
	a, errBuf := newTestApp(t, "-n", "1000", "--timeout", "1ns", "-q")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
	}
	if out.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", out.String())
	}
	if !strings.Contains(errBuf.String(), "Timeout") {
		t.Errorf("stderr should explain the timeout, got %q", errBuf.String())
	}
}

func TestRun_Completion(t *testing.T) {
	a, _ := newTestApp(t, "--completion", "bash")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "_picalc_completions") {
		t.Error("expected a bash completion script")
	}
}

func TestRun_Hello(t *testing.T) {
	a, _ := newTestApp(t, "--hello", "-w", "1", "--details")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "Hello from worker 0 of 1") {
		t.Errorf("output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Team size: 1 (requested 1)") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRun_Interactive(t *testing.T) {
	a, _ := newTestApp(t, "--interactive")
	var out bytes.Buffer
	// Stdin is not a terminal under go test; an immediate EOF ends the session.
	devNull, err := os.Open(os.DevNull)
	if err != nil {
		t.Skip("no null device")
	}
	defer devNull.Close()
	oldStdin := os.Stdin
	os.Stdin = devNull
	defer func() { os.Stdin = oldStdin }()

	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRun_ServerStopsOnCancel(t *testing.T) {
	a, _ := newTestApp(t, "--serve", "127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if code := a.Run(ctx, &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "Serving on 127.0.0.1:0") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"--version"}, true},
		{[]string{"-n", "5", "-V"}, true},
		{[]string{"-version"}, true},
		{[]string{"-v"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := HasVersionFlag(tt.args); got != tt.want {
			t.Errorf("HasVersionFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}

	var buf bytes.Buffer
	PrintVersion(&buf)
	if !strings.HasPrefix(buf.String(), "picalc ") {
		t.Errorf("version banner = %q", buf.String())
	}
}
