package order

import "testing"

func TestPriceBoundsAggressiveTicks(t *testing.T) {
	b := DefaultPriceBounds()
	if got := b.MinBidNearestTick(); got != 100 {
		t.Fatalf("expected min bid tick 100, got %d", got)
	}
	if got := b.MaxAskNearestTick(); got != 2147483600 {
		t.Fatalf("expected max ask tick 2147483600, got %d", got)
	}
	if err := b.Validate(b.MinBidNearestTick()); err != nil {
		t.Fatalf("min tick should be valid: %v", err)
	}
	if err := b.Validate(b.MaxAskNearestTick()); err != nil {
		t.Fatalf("max tick should be valid: %v", err)
	}
}

func TestPriceBoundsValidate(t *testing.T) {
	b := DefaultPriceBounds()
	if err := b.Validate(10100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Validate(10150); err == nil {
		t.Fatalf("expected tick size error")
	}
	if err := b.Validate(0); err == nil {
		t.Fatalf("expected minimum bid error")
	}
	if err := b.Validate(-100); err == nil {
		t.Fatalf("expected minimum bid error for negative price")
	}
}
