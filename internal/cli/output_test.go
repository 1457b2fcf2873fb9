package cli

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/orchestration"
)

func sampleRun() orchestration.RunResult {
	return orchestration.RunResult{
		Name:     integration.PostReduction.DisplayName(),
		Strategy: integration.PostReduction,
		Result: integration.Result{
			Value:            3.141592653589801,
			Steps:            1_000_000,
			Strategy:         integration.PostReduction,
			RequestedWorkers: 8,
			Workers:          4,
			Elapsed:          100 * time.Millisecond,
		},
		Values:   []float64{3.141592653589801, 3.141592653589801},
		Duration: 100 * time.Millisecond,
	}
}

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	// Create temporary directory
	tmpDir := t.TempDir()

	testCases := []struct {
		name        string
		outputFile  string
		expectError bool
		checkFunc   func(t *testing.T, filePath string)
	}{
		{
			name:        "Write result to file",
			outputFile:  filepath.Join(tmpDir, "result.txt"),
			expectError: false,
			checkFunc: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				if err != nil {
					t.Fatalf("Failed to read output file: %v", err)
				}
				contentStr := string(content)
				if !strings.Contains(contentStr, "pi = 3.141592653589801") {
					t.Errorf("File should contain the value, got:\n%s", contentStr)
				}
				if !strings.Contains(contentStr, "# Strategy: Post-Reduction") {
					t.Error("File should name the strategy")
				}
				if !strings.Contains(contentStr, "# Workers: 4 (requested 8)") {
					t.Error("File should record granted and requested workers")
				}
			},
		},
		{
			name:        "Empty output file (no write)",
			outputFile:  "",
			expectError: false,
			checkFunc:   nil, // No file should be created
		},
		{
			name:        "Create nested directory",
			outputFile:  filepath.Join(tmpDir, "nested", "dir", "result.txt"),
			expectError: false,
			checkFunc: func(t *testing.T, filePath string) {
				if _, err := os.Stat(filePath); err != nil {
					t.Errorf("File should exist in nested directory: %v", err)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			config := OutputConfig{
				OutputFile: tc.outputFile,
			}

			err := WriteResultToFile(sampleRun(), 1_000_000, config)

			if tc.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if tc.outputFile != "" && tc.checkFunc != nil {
					tc.checkFunc(t, tc.outputFile)
				}
			}
		})
	}
}

func TestFormatQuietResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   float64
		verbose bool
		want    string
	}{
		{"fixed decimals", math.Pi, false, "3.141592653589793"},
		{"round trip", math.Nextafter(math.Pi, 4), true, "3.1415926535897936"},
		{"short value verbose", 3.5, true, "3.5"},
		{"short value fixed", 3.5, false, "3.500000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatQuietResult(tt.value, tt.verbose); got != tt.want {
				t.Errorf("FormatQuietResult(%v, %v) = %q, want %q", tt.value, tt.verbose, got, tt.want)
			}
		})
	}
}

func TestDisplayQuietResult(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayQuietResult(&buf, math.Pi, false)
	if buf.String() != "3.141592653589793\n" {
		t.Errorf("DisplayQuietResult wrote %q", buf.String())
	}
}

func TestDisplayResultWithConfig(t *testing.T) {
	t.Parallel()
	result := sampleRun()
	tmpDir := t.TempDir()

	t.Run("Quiet mode", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		config := OutputConfig{
			Quiet: true,
		}
		err := DisplayResultWithConfig(&buf, result, 1_000_000, config)
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		output := buf.String()
		if output != "3.141592653589801\n" {
			t.Errorf("Quiet output should be the value alone, got %q", output)
		}
	})

	t.Run("Normal mode with file output", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		outputFile := filepath.Join(tmpDir, "test_output.txt")
		config := OutputConfig{
			OutputFile: outputFile,
			Quiet:      false,
		}
		err := DisplayResultWithConfig(&buf, result, 1_000_000, config)
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		// Check that file was created
		if _, err := os.Stat(outputFile); err != nil {
			t.Errorf("Output file should exist: %v", err)
		}
		// Check that success message was printed
		output := buf.String()
		if !strings.Contains(output, "Result saved to") {
			t.Errorf("Should show file save message, got '%s'", output)
		}
	})

	t.Run("Quiet mode with file output", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		outputFile := filepath.Join(tmpDir, "quiet_output.txt")
		config := OutputConfig{
			OutputFile: outputFile,
			Quiet:      true,
		}
		err := DisplayResultWithConfig(&buf, result, 1_000_000, config)
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		// Check that file was created
		if _, err := os.Stat(outputFile); err != nil {
			t.Errorf("Output file should exist: %v", err)
		}
		// In quiet mode, file save message should not appear
		output := buf.String()
		if strings.Contains(output, "Result saved to") {
			t.Error("Quiet mode should not show file save message")
		}
	})

}
