package market

const (
	DefaultTimeDecay = 0.002
	DefaultTimeFloor = 0.000001
)

// TimeHorizon is the decaying T-t factor of the reservation price. It starts
// at 1 and never reaches zero.
type TimeHorizon struct {
	value float64
	decay float64
	floor float64
}

// NewTimeHorizon returns a horizon at 1 that drops by decay on every Step.
func NewTimeHorizon(decay, floor float64) *TimeHorizon {
	if decay < 0 {
		decay = 0
	}
	if floor <= 0 {
		floor = DefaultTimeFloor
	}
	return &TimeHorizon{value: 1, decay: decay, floor: floor}
}

// Step decrements the horizon once and returns the new value.
func (h *TimeHorizon) Step() float64 {
	h.value -= h.decay
	if h.value < h.floor {
		h.value = h.floor
	}
	return h.value
}

// Value returns the current horizon without stepping it.
func (h *TimeHorizon) Value() float64 { return h.value }
