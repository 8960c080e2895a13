package market

// Instrument identifies one of the two listed instruments.
type Instrument int

const (
	InstrumentFuture Instrument = iota
	InstrumentETF
)

// Levels is the number of price levels carried by a book update.
const Levels = 5

func (i Instrument) String() string {
	switch i {
	case InstrumentFuture:
		return "FUTURE"
	case InstrumentETF:
		return "ETF"
	default:
		return "UNKNOWN"
	}
}

// BookUpdate is a top-of-book snapshot for one instrument. Prices are in
// minor currency units; empty levels carry zero price and volume.
type BookUpdate struct {
	Instrument Instrument
	Sequence   int64
	BidPrices  [Levels]int64
	BidVolumes [Levels]int64
	AskPrices  [Levels]int64
	AskVolumes [Levels]int64
}

// BestBid returns the top bid price, 0 when the bid side is empty.
func (u BookUpdate) BestBid() int64 { return u.BidPrices[0] }

// BestAsk returns the top ask price, 0 when the ask side is empty.
func (u BookUpdate) BestAsk() int64 { return u.AskPrices[0] }

// TwoSided reports whether both sides of the book have a price.
func (u BookUpdate) TwoSided() bool {
	return u.BidPrices[0] != 0 && u.AskPrices[0] != 0
}

// Mid returns the mid price in whole ticks (dollars when tickSize is 100 cents).
func (u BookUpdate) Mid(tickSize int64) float64 {
	return float64(u.BidPrices[0]+u.AskPrices[0]) / float64(2*tickSize)
}
