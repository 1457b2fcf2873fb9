package integration

import (
	"bytes"
	"context"
	"math"
	"strings"
	"sync"
	"testing"
)

func relErr(got, want float64) float64 {
	if want == 0 {
		return math.Abs(got)
	}
	return math.Abs(got-want) / math.Abs(want)
}

func mustSpec(t *testing.T, n int64, f Integrand) Spec {
	t.Helper()
	s, err := NewSpec(n, f)
	if err != nil {
		t.Fatalf("NewSpec(%d) error = %v", n, err)
	}
	return s
}

func mustIntegrate(t *testing.T, spec Spec, workers int, s Strategy, opts ...Option) Result {
	t.Helper()
	res, err := Integrate(context.Background(), spec, workers, s, opts...)
	if err != nil {
		t.Fatalf("Integrate(%v, %d workers) error = %v", s, workers, err)
	}
	return res
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }
