package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumberString inserts thousands separators into a decimal string.
func FormatNumberString(s string) string {
	if s == "" {
		return ""
	}
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 1)
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatSteps formats a step count with thousands separators.
func FormatSteps(n int64) string {
	return FormatNumberString(strconv.FormatInt(n, 10))
}

// FormatRelativeError formats |got-want|/|want| in scientific notation, or
// "exact" when the values are identical.
func FormatRelativeError(got, want float64) string {
	if got == want {
		return "exact"
	}
	diff := math.Abs(got - want)
	if want != 0 {
		diff /= math.Abs(want)
	}
	return fmt.Sprintf("%.2e", diff)
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// FormatThroughput renders steps per second with an SI prefix.
func FormatThroughput(steps int64, elapsed float64) string {
	if elapsed <= 0 {
		return "n/a"
	}
	rate := float64(steps) / elapsed
	switch {
	case rate >= 1e9:
		return fmt.Sprintf("%.2f Gsteps/s", rate/1e9)
	case rate >= 1e6:
		return fmt.Sprintf("%.2f Msteps/s", rate/1e6)
	case rate >= 1e3:
		return fmt.Sprintf("%.2f ksteps/s", rate/1e3)
	default:
		return fmt.Sprintf("%.0f steps/s", rate)
	}
}
