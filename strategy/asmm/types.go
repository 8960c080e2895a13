package asmm

// Quote is the outcome of one pricing pass. Bid and Ask are tick-aligned
// prices in minor currency units; the other fields are in whole ticks.
type Quote struct {
	Mid         float64
	Reservation float64
	Spread      float64
	Bid         int64
	Ask         int64
}

// Inputs carries the market and inventory state for one pricing pass.
type Inputs struct {
	BestBid   int64   // minor units
	BestAsk   int64   // minor units
	Inventory int64   // signed lots
	Variance  float64 // mid variance in whole ticks squared
	Horizon   float64 // T-t, already stepped by the caller
}
