package market

import "testing"

func TestBookUpdate_TwoSidedAndMid(t *testing.T) {
	var u BookUpdate
	if u.TwoSided() {
		t.Fatal("empty book reported as two-sided")
	}
	u.BidPrices[0] = 10000
	if u.TwoSided() {
		t.Fatal("bid-only book reported as two-sided")
	}
	u.AskPrices[0] = 10200
	if !u.TwoSided() {
		t.Fatal("two-sided book not detected")
	}
	if u.BestBid() != 10000 || u.BestAsk() != 10200 {
		t.Fatalf("unexpected touch %d/%d", u.BestBid(), u.BestAsk())
	}
	if m := u.Mid(100); m != 101 {
		t.Fatalf("unexpected mid %f", m)
	}
}

func TestInstrumentString(t *testing.T) {
	if InstrumentFuture.String() != "FUTURE" || InstrumentETF.String() != "ETF" || Instrument(7).String() != "UNKNOWN" {
		t.Fatal("unexpected instrument names")
	}
}
