package market

import "math"

// DefaultLookback is the default number of mid samples kept for variance.
const DefaultLookback = 10

// MidPriceWindow keeps the most recent mid prices in a fixed-capacity ring
// and reports their variance.
type MidPriceWindow struct {
	samples []float64
	next    int
	count   int
}

// NewMidPriceWindow creates a window holding up to lookback samples.
func NewMidPriceWindow(lookback int) *MidPriceWindow {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &MidPriceWindow{samples: make([]float64, lookback)}
}

// Observe admits a mid sample unless it truncates to zero whole units.
// It reports whether the sample was admitted.
func (w *MidPriceWindow) Observe(mid float64) bool {
	if math.Trunc(mid) == 0 {
		return false
	}
	w.samples[w.next] = mid
	w.next = (w.next + 1) % len(w.samples)
	if w.count < len(w.samples) {
		w.count++
	}
	return true
}

// Len returns the number of samples currently held.
func (w *MidPriceWindow) Len() int { return w.count }

// IsReady reports whether the window is full.
func (w *MidPriceWindow) IsReady() bool { return w.count == len(w.samples) }

// Variance returns the population variance of the window, or 0 until the
// window is full.
func (w *MidPriceWindow) Variance() float64 {
	if !w.IsReady() {
		return 0
	}
	n := float64(len(w.samples))
	mean := 0.0
	for _, s := range w.samples {
		mean += s
	}
	mean /= n

	sumSquaredDiff := 0.0
	for _, s := range w.samples {
		diff := s - mean
		sumSquaredDiff += diff * diff
	}
	return sumSquaredDiff / n
}
