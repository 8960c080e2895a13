// Package hedge keeps the hedge-instrument position offsetting the primary
// position within a one-lot deadband.
package hedge

import (
	"errors"

	"hedged-mm/order"
)

// ErrNotHedge is returned when an order id belongs to a primary quote.
var ErrNotHedge = errors.New("not a hedge order")

// Config holds the hedge sizing parameters.
type Config struct {
	// LotSize is the deadband: exposure within one lot is left unhedged.
	LotSize       int64
	PositionLimit int64
	Bounds        order.PriceBounds
}

// State is the hedge position as seen by the controller.
type State struct {
	Confirmed int64 // acknowledged by hedge fills
	Pending   int64 // issued, not yet filled or released
}

// Effective is the exposure used for sizing decisions.
func (s State) Effective() int64 { return s.Confirmed + s.Pending }

// Controller issues aggressive hedge orders so that confirmed plus pending
// hedge exposure stays within the deadband around -position.
type Controller struct {
	gw      order.Gateway
	tracker *order.Tracker
	ids     *order.IDSequence
	cfg     Config
	state   State
}

func NewController(gw order.Gateway, tracker *order.Tracker, ids *order.IDSequence, cfg Config) *Controller {
	return &Controller{gw: gw, tracker: tracker, ids: ids, cfg: cfg}
}

// State returns the current hedge state.
func (c *Controller) State() State { return c.state }

// Plan returns the hedge order needed for the given primary position without
// issuing it. A zero volume means no hedge is needed.
func (c *Controller) Plan(position int64) (order.Kind, int64) {
	desired := -position
	effective := c.state.Effective()
	band := c.cfg.LotSize
	limit := c.cfg.PositionLimit

	switch {
	case effective < desired-band:
		size := desired - band - effective
		if room := limit - effective; size > room {
			size = room
		}
		return order.KindHedgeBid, max(size, 0)
	case effective > desired+band:
		size := effective - (desired + band)
		if room := effective + limit; size > room {
			size = room
		}
		return order.KindHedgeAsk, max(size, 0)
	}
	return order.KindHedgeBid, 0
}

// Rebalance issues at most one hedge order for the given primary position.
// ok is false when the position is already inside the band.
func (c *Controller) Rebalance(position int64) (o order.Order, ok bool, err error) {
	kind, size := c.Plan(position)
	if size == 0 {
		return order.Order{}, false, nil
	}
	price := c.cfg.Bounds.MaxAskNearestTick()
	if kind == order.KindHedgeAsk {
		price = c.cfg.Bounds.MinBidNearestTick()
	}
	o = order.Order{
		ID:       c.ids.Next(),
		Kind:     kind,
		Price:    price,
		Volume:   size,
		Lifespan: order.FillAndKill,
	}
	c.tracker.Register(o)
	if err := c.gw.InsertHedgeOrder(o.ID, kind.Side(), price, size); err != nil {
		failed, _ := c.tracker.Fail(o.ID)
		return failed, false, err
	}
	c.state.Pending += signed(kind, size)
	o.Status = order.StatusPendingLive
	return o, true, nil
}

// OnFill moves filled volume from pending to confirmed.
func (c *Controller) OnFill(id order.ID, volume int64) (order.Order, error) {
	if err := c.check(id); err != nil {
		return order.Order{}, err
	}
	o, _, err := c.tracker.ApplyFill(id, volume)
	if err != nil {
		return o, err
	}
	d := signed(o.Kind, volume)
	c.state.Confirmed += d
	c.state.Pending -= d
	return o, nil
}

// OnStatus handles a status update for a hedge order. Filled volume is only
// counted through OnFill; a terminal status releases the unfilled remainder.
// A partly filled fill-and-kill order stays pending until the venue reports
// it terminal through OnStatus or OnError.
func (c *Controller) OnStatus(id order.ID, remaining int64) (order.Order, bool, error) {
	if err := c.check(id); err != nil {
		return order.Order{}, false, err
	}
	o, done, err := c.tracker.ApplyStatus(id, 0, remaining)
	if done {
		c.release(o)
	}
	return o, done, err
}

// OnError terminates a rejected hedge order and releases its remainder.
func (c *Controller) OnError(id order.ID) (order.Order, error) {
	if err := c.check(id); err != nil {
		return order.Order{}, err
	}
	o, err := c.tracker.Fail(id)
	if err == nil {
		c.release(o)
	}
	return o, err
}

func (c *Controller) check(id order.ID) error {
	o, ok := c.tracker.Get(id)
	if !ok {
		return order.ErrUnknownOrder
	}
	if !o.Kind.IsHedge() {
		return ErrNotHedge
	}
	return nil
}

func (c *Controller) release(o order.Order) {
	c.state.Pending -= signed(o.Kind, o.Remaining())
}

func signed(kind order.Kind, volume int64) int64 {
	if kind == order.KindHedgeAsk {
		return -volume
	}
	return volume
}
