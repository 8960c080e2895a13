package order

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownOrder 订单号未被跟踪（已终结或从未由本会话发出）。
var ErrUnknownOrder = errors.New("unknown order")

// Tracker 以订单号为键记录所有未终结订单；订单进入终态即移出。
type Tracker struct {
	sm     *StateMachine
	orders map[ID]*Order
	open   map[Kind]int
}

func NewTracker() *Tracker {
	return &Tracker{
		sm:     NewStateMachine(),
		orders: make(map[ID]*Order),
		open:   make(map[Kind]int),
	}
}

// Register 登记新发出的订单，状态置为 PENDING_LIVE。
func (t *Tracker) Register(o Order) {
	o.Status = StatusPendingLive
	if prev, ok := t.orders[o.ID]; ok {
		t.open[prev.Kind]--
	}
	t.orders[o.ID] = &o
	t.open[o.Kind]++
}

// Get 返回订单副本。
func (t *Tracker) Get(id ID) (Order, bool) {
	o, ok := t.orders[id]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Open 返回某类别未终结订单数量，包括撤单中的订单。
func (t *Tracker) Open(kind Kind) int { return t.open[kind] }

// Len 返回跟踪中的订单总数。
func (t *Tracker) Len() int { return len(t.orders) }

// List 按订单号顺序返回全部订单（拷贝）。
func (t *Tracker) List() []Order {
	res := make([]Order, 0, len(t.orders))
	for _, o := range t.orders {
		res = append(res, *o)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// MarkCancelling 记录撤单请求已发出。
func (t *Tracker) MarkCancelling(id ID) error {
	o, ok := t.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	if err := t.sm.ValidateTransition(o.Status, StatusCancelling); err != nil {
		return err
	}
	o.Status = StatusCancelling
	return nil
}

// ApplyStatus 处理交易所状态回报。remaining 为 0 时订单终结并移出，
// 返回的 done 为 true。
func (t *Tracker) ApplyStatus(id ID, filled, remaining int64) (o Order, done bool, err error) {
	cur, ok := t.orders[id]
	if !ok {
		return Order{}, false, ErrUnknownOrder
	}
	if filled > cur.Filled {
		cur.Filled = filled
	}
	if remaining > 0 {
		if cur.Status == StatusPendingLive {
			cur.Status = StatusLive
		}
		return *cur, false, nil
	}
	final := StatusCanceled
	if cur.Filled >= cur.Volume {
		final = StatusFilled
	}
	o, err = t.retire(cur, final)
	return o, err == nil, err
}

// ApplyFill 累加成交量。主合约订单由随后的状态回报终结；
// 对冲单没有状态回报，全部成交即终结，此时 done 为 true。
func (t *Tracker) ApplyFill(id ID, volume int64) (o Order, done bool, err error) {
	cur, ok := t.orders[id]
	if !ok {
		return Order{}, false, ErrUnknownOrder
	}
	cur.Filled += volume
	if cur.Status == StatusPendingLive {
		cur.Status = StatusLive
	}
	if cur.Kind.IsHedge() && cur.Filled >= cur.Volume {
		o, err = t.retire(cur, StatusFilled)
		return o, err == nil, err
	}
	return *cur, false, nil
}

// Fail 将订单强制终结为 REJECTED。
func (t *Tracker) Fail(id ID) (Order, error) {
	cur, ok := t.orders[id]
	if !ok {
		return Order{}, ErrUnknownOrder
	}
	return t.retire(cur, StatusRejected)
}

func (t *Tracker) retire(o *Order, final Status) (Order, error) {
	if !t.sm.IsFinalState(final) {
		return *o, fmt.Errorf("%w: %s is not final", ErrIllegalTransition, final)
	}
	if err := t.sm.ValidateTransition(o.Status, final); err != nil {
		return *o, err
	}
	o.Status = final
	delete(t.orders, o.ID)
	t.open[o.Kind]--
	return *o, nil
}
