package tui

import (
	"math"
	"strings"
)

// History keeps the most recent samples of one series, oldest first.
// Once full, recording a sample drops the oldest one.
type History struct {
	samples  []float64
	capacity int
}

// NewHistory returns an empty history holding at most capacity samples.
func NewHistory(capacity int) *History {
	return &History{capacity: max(capacity, 1)}
}

// Record appends a sample.
func (h *History) Record(v float64) {
	if len(h.samples) == h.capacity {
		copy(h.samples, h.samples[1:])
		h.samples[len(h.samples)-1] = v
		return
	}
	h.samples = append(h.samples, v)
}

// Len returns the number of samples held.
func (h *History) Len() int { return len(h.samples) }

// Capacity returns the maximum number of samples held.
func (h *History) Capacity() int { return h.capacity }

// Latest returns the newest sample, or 0 when empty.
func (h *History) Latest() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	return h.samples[len(h.samples)-1]
}

// Values returns a copy of the samples, oldest first.
func (h *History) Values() []float64 {
	if len(h.samples) == 0 {
		return nil
	}
	return append([]float64(nil), h.samples...)
}

// SetCapacity changes the capacity, keeping the newest samples that fit.
func (h *History) SetCapacity(capacity int) {
	h.capacity = max(capacity, 1)
	if drop := len(h.samples) - h.capacity; drop > 0 {
		h.samples = append(h.samples[:0], h.samples[drop:]...)
	}
}

// Clear drops every sample and keeps the capacity.
func (h *History) Clear() { h.samples = h.samples[:0] }

// levels are the eight block heights of a sparkline cell.
var levels = []rune("▁▂▃▄▅▆▇█")

// scale maps v from [lo, hi] onto [0, 1]. NaN and an empty range map to 0.
func scale(v, lo, hi float64) float64 {
	if hi <= lo || math.IsNaN(v) {
		return 0
	}
	return min(max((v-lo)/(hi-lo), 0), 1)
}

// Sparkline renders one block per sample, scaled from [lo, hi].
func Sparkline(values []float64, lo, hi float64) string {
	out := make([]rune, 0, len(values))
	for _, v := range values {
		out = append(out, levels[int(math.Round(scale(v, lo, hi)*float64(len(levels)-1)))])
	}
	return string(out)
}

// brailleBit[col][row] is the dot bit of a braille cell, row 0 on top.
var brailleBit = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// AreaChart renders progress fractions in [0, 1] as a filled braille area
// of rows lines and width cells. Each cell holds two samples, the newest on
// the right; older samples that do not fit are dropped.
func AreaChart(fractions []float64, width, rows int) []string {
	if width <= 0 || rows <= 0 || len(fractions) == 0 {
		return nil
	}
	cols := width * 2
	if len(fractions) > cols {
		fractions = fractions[len(fractions)-cols:]
	}
	offset := cols - len(fractions)
	dots := rows * 4

	cells := make([][]rune, rows)
	for r := range cells {
		cells[r] = []rune(strings.Repeat("\u2800", width))
	}
	for i, f := range fractions {
		col := offset + i
		height := int(math.Round(scale(f, 0, 1) * float64(dots)))
		// Fill from the bottom dot row up to height.
		for d := range height {
			row := dots - 1 - d
			cells[row/4][col/2] |= brailleBit[col%2][row%4]
		}
	}

	lines := make([]string, rows)
	for r, line := range cells {
		lines[r] = string(line)
	}
	return lines
}
