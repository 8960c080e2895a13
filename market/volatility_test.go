package market

import (
	"math"
	"testing"
)

func TestMidPriceWindow_VarianceZeroUntilFull(t *testing.T) {
	w := NewMidPriceWindow(3)
	w.Observe(100)
	w.Observe(102)
	if v := w.Variance(); v != 0 {
		t.Fatalf("expected 0 before window is full, got %f", v)
	}
	w.Observe(104)
	// population variance of 100,102,104
	if v := w.Variance(); math.Abs(v-8.0/3.0) > 1e-9 {
		t.Fatalf("unexpected variance %f", v)
	}
}

func TestMidPriceWindow_DropsOldest(t *testing.T) {
	w := NewMidPriceWindow(2)
	w.Observe(100)
	w.Observe(200)
	w.Observe(102)
	if w.Len() != 2 {
		t.Fatalf("expected 2 samples, got %d", w.Len())
	}
	// 200 and 102 remain
	if v := w.Variance(); math.Abs(v-2401) > 1e-9 {
		t.Fatalf("unexpected variance %f", v)
	}
}

func TestMidPriceWindow_TruncatedZeroNotAdmitted(t *testing.T) {
	w := NewMidPriceWindow(2)
	if w.Observe(0.99) {
		t.Fatalf("sub-unit mid must not be admitted")
	}
	if !w.Observe(1.5) {
		t.Fatalf("mid of 1.5 should be admitted")
	}
	if w.Len() != 1 {
		t.Fatalf("expected 1 sample, got %d", w.Len())
	}
}

func TestMidPriceWindow_ConstantPrices(t *testing.T) {
	w := NewMidPriceWindow(DefaultLookback)
	for i := 0; i < 25; i++ {
		w.Observe(101)
	}
	if !w.IsReady() {
		t.Fatalf("window should be full")
	}
	if v := w.Variance(); v != 0 {
		t.Fatalf("expected zero variance, got %f", v)
	}
}
