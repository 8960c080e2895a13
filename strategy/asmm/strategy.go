package asmm

// Pricer computes Avellaneda–Stoikov quotes. It holds no state besides its
// configuration.
type Pricer struct {
	cfg Config
}

// NewPricer creates a pricer; cfg is expected to be validated.
func NewPricer(cfg Config) *Pricer {
	return &Pricer{cfg: cfg}
}

// Config returns the active parameters.
func (p *Pricer) Config() Config { return p.cfg }

// SetRisk replaces gamma and k, keeping the tick size.
func (p *Pricer) SetRisk(gamma, k float64) {
	p.cfg.Gamma = gamma
	p.cfg.K = k
}

// Quote prices one cycle. The caller must not pass a one-sided book.
func (p *Pricer) Quote(in Inputs) Quote {
	mid := float64(in.BestBid+in.BestAsk) / float64(2*p.cfg.TickSize)
	r := ReservationPrice(mid, in.Inventory, p.cfg.Gamma, in.Variance, in.Horizon)
	delta := OptimalSpread(p.cfg.Gamma, p.cfg.K, in.Variance, in.Horizon)

	return Quote{
		Mid:         mid,
		Reservation: r,
		Spread:      delta,
		Bid:         QuantizeUp(r-delta/2, p.cfg.TickSize),
		Ask:         QuantizeUp(r+delta/2, p.cfg.TickSize),
	}
}
