package inventory

import "testing"

func TestExposureSameDirectionAverages(t *testing.T) {
	var tr Tracker
	tr.ApplyFill(true, 100, 5)
	if e := tr.Exposure(); e.Price != 100 || e.Volume != 5 {
		t.Fatalf("unexpected exposure %+v", e)
	}
	tr.ApplyFill(true, 102, 5)
	if e := tr.Exposure(); e.Price != 101 || e.Volume != 10 {
		t.Fatalf("unexpected exposure %+v", e)
	}
	if tr.Position() != 10 {
		t.Fatalf("expected position 10, got %d", tr.Position())
	}
}

func TestExposureFloorDivision(t *testing.T) {
	var e Exposure
	e.Apply(100, -3)
	e.Apply(101, -4)
	// (4*101 + 3*100) / 7 = 704/7 = 100.57
	if e.Price != 100 || e.Volume != -7 {
		t.Fatalf("unexpected exposure %+v", e)
	}
}

func TestExposureOffsets(t *testing.T) {
	tests := []struct {
		name  string
		delta int64
		price int64
		want  Exposure
	}{
		{name: "partial offset keeps price", delta: -4, price: 120, want: Exposure{Price: 100, Volume: 6}},
		{name: "full offset resets", delta: -10, price: 120, want: Exposure{}},
		{name: "flip takes new price", delta: -15, price: 120, want: Exposure{Price: 120, Volume: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Exposure{Price: 100, Volume: 10}
			e.Apply(tt.price, tt.delta)
			if e != tt.want {
				t.Fatalf("got %+v want %+v", e, tt.want)
			}
		})
	}
}

func TestExposureRoundTripToZero(t *testing.T) {
	fills := []struct {
		buy    bool
		price  int64
		volume int64
	}{
		{true, 10100, 10},
		{true, 10300, 5},
		{false, 10200, 20},
		{true, 9900, 10},
		{false, 10000, 5},
	}
	var tr Tracker
	for _, f := range fills {
		tr.ApplyFill(f.buy, f.price, f.volume)
	}
	if tr.Position() != 0 {
		t.Fatalf("expected flat position, got %d", tr.Position())
	}
	if e := tr.Exposure(); e.Price != 0 || e.Volume != 0 {
		t.Fatalf("expected empty exposure, got %+v", e)
	}
}

func TestExposureVolumeTracksPosition(t *testing.T) {
	var tr Tracker
	for i, f := range []int64{3, -7, 12, -1, -20, 13} {
		tr.ApplyFill(f > 0, int64(10000+i*100), abs(f))
		if tr.Exposure().Volume != tr.Position() {
			t.Fatalf("exposure %d diverged from position %d", tr.Exposure().Volume, tr.Position())
		}
	}
}

func TestExposureZeroVolumeIgnored(t *testing.T) {
	e := Exposure{Price: 100, Volume: 10}
	e.Apply(500, 0)
	if e != (Exposure{Price: 100, Volume: 10}) {
		t.Fatalf("zero fill must not change exposure: %+v", e)
	}
}
