package market

import "testing"

func TestDepthUpdate(t *testing.T) {
	var d Depth
	d.Update(BookUpdate{
		BidVolumes: [Levels]int64{10, 20, 0, 0, 0},
		AskVolumes: [Levels]int64{5, 5, 5, 0, 0},
	})
	if d.BidVolume != 30 || d.AskVolume != 15 {
		t.Fatalf("unexpected depth %+v", d)
	}
	if imb := d.Imbalance(); imb <= 0 {
		t.Fatalf("expected bid-heavy imbalance, got %f", imb)
	}
	if (Depth{}).Imbalance() != 0 {
		t.Fatalf("empty depth should have zero imbalance")
	}
}
