package market

import (
	"math"
	"testing"
)

func TestTimeHorizon_DecaysToFloor(t *testing.T) {
	h := NewTimeHorizon(DefaultTimeDecay, DefaultTimeFloor)
	if h.Value() != 1 {
		t.Fatalf("expected horizon to start at 1, got %f", h.Value())
	}
	if v := h.Step(); math.Abs(v-0.998) > 1e-12 {
		t.Fatalf("unexpected horizon after one step: %f", v)
	}

	prev := h.Value()
	for i := 0; i < 1000; i++ {
		v := h.Step()
		if v > prev {
			t.Fatalf("horizon increased at step %d: %f > %f", i, v, prev)
		}
		if v <= 0 {
			t.Fatalf("horizon reached %f at step %d", v, i)
		}
		prev = v
	}
	if h.Value() != DefaultTimeFloor {
		t.Fatalf("expected floor %g, got %g", DefaultTimeFloor, h.Value())
	}
}

func TestTimeHorizon_InvalidArgs(t *testing.T) {
	h := NewTimeHorizon(-1, 0)
	if v := h.Step(); v != 1 {
		t.Fatalf("negative decay should be treated as zero, got %f", v)
	}
}

func TestTimeHorizon_StepClampsAtFloor(t *testing.T) {
	h := NewTimeHorizon(0.4, 0.01)
	if got := h.Step(); math.Abs(got-0.6) > 1e-12 {
		t.Fatalf("expected 0.6, got %f", got)
	}
	h.Step()
	h.Step()
	for i := 0; i < 10; i++ {
		if got := h.Step(); got != 0.01 {
			t.Fatalf("expected floor 0.01, got %f", got)
		}
	}
}
