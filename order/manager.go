package order

// Gateway 接收引擎发出的订单意图，由外部传输层负责真正下发。
// 返回错误表示意图未能送出，对应订单按拒单处理。
type Gateway interface {
	InsertOrder(id ID, side Side, price, volume int64, lifespan Lifespan) error
	CancelOrder(id ID) error
	InsertHedgeOrder(id ID, side Side, price, volume int64) error
}

// SlotState 报价槽位状态。
type SlotState string

const (
	SlotEmpty       SlotState = "EMPTY"
	SlotPendingLive SlotState = "PENDING_LIVE"
	SlotLive        SlotState = "LIVE"
	SlotCancelling  SlotState = "CANCELLING"
)

// QuoteConfig 报价管理参数。
type QuoteConfig struct {
	LotSize       int64
	PositionLimit int64
	// EagerReplace 为 true 时撤单发出即释放槽位，同一周期即可挂出替换单。
	EagerReplace bool
	Bounds       PriceBounds
}

type slot struct {
	id    ID
	price int64
}

// Actions 汇总一次 Reprice 发出的意图。
type Actions struct {
	Inserted  []Order
	Cancelled []ID
	Failed    []Order // 网关发送失败而被直接终结的订单
	Skipped   []Kind  // 价格越界被跳过的报价
}

// Empty 本轮是否没有任何动作。
func (a Actions) Empty() bool {
	return len(a.Inserted) == 0 && len(a.Cancelled) == 0 && len(a.Failed) == 0 && len(a.Skipped) == 0
}

// QuoteManager 维护主合约的一个买单槽位和一个卖单槽位。
type QuoteManager struct {
	gw      Gateway
	tracker *Tracker
	ids     *IDSequence
	cfg     QuoteConfig
	bid     slot
	ask     slot
}

func NewQuoteManager(gw Gateway, tracker *Tracker, ids *IDSequence, cfg QuoteConfig) *QuoteManager {
	return &QuoteManager{
		gw:      gw,
		tracker: tracker,
		ids:     ids,
		cfg:     cfg,
	}
}

// Reprice 将目标买卖价与当前挂单对比，先撤价格变化的挂单，再在空槽位上挂新单。
// 价格为 0 表示该侧不报价。
func (m *QuoteManager) Reprice(bidPrice, askPrice, position int64) Actions {
	var acts Actions
	m.cancelIfMoved(&m.bid, bidPrice, &acts)
	m.cancelIfMoved(&m.ask, askPrice, &acts)

	lot := m.cfg.LotSize
	limit := m.cfg.PositionLimit
	if m.bid.id == 0 && bidPrice != 0 &&
		position <= limit-(lot*int64(m.tracker.Open(KindBid))+lot) {
		m.insert(&m.bid, KindBid, bidPrice, &acts)
	}
	if m.ask.id == 0 && askPrice != 0 &&
		position >= -limit+(lot*int64(m.tracker.Open(KindAsk))+lot) {
		m.insert(&m.ask, KindAsk, askPrice, &acts)
	}
	return acts
}

func (m *QuoteManager) cancelIfMoved(s *slot, price int64, acts *Actions) {
	if s.id == 0 || price == 0 || price == s.price {
		return
	}
	o, ok := m.tracker.Get(s.id)
	if !ok {
		s.id, s.price = 0, 0
		return
	}
	if !m.tracker.sm.CanCancel(o.Status) {
		// 撤单已发出，等待回报
		return
	}
	if err := m.gw.CancelOrder(s.id); err != nil {
		// 撤单未能送出，订单仍在交易所挂着，下个周期重试
		return
	}
	_ = m.tracker.MarkCancelling(s.id)
	acts.Cancelled = append(acts.Cancelled, s.id)
	if m.cfg.EagerReplace {
		s.id, s.price = 0, 0
	}
}

func (m *QuoteManager) insert(s *slot, kind Kind, price int64, acts *Actions) {
	if err := m.cfg.Bounds.Validate(price); err != nil {
		acts.Skipped = append(acts.Skipped, kind)
		return
	}
	o := Order{
		ID:       m.ids.Next(),
		Kind:     kind,
		Price:    price,
		Volume:   m.cfg.LotSize,
		Lifespan: GoodForDay,
	}
	m.tracker.Register(o)
	if err := m.gw.InsertOrder(o.ID, kind.Side(), price, o.Volume, GoodForDay); err != nil {
		failed, _ := m.tracker.Fail(o.ID)
		acts.Failed = append(acts.Failed, failed)
		return
	}
	s.id, s.price = o.ID, price
	o.Status = StatusPendingLive
	acts.Inserted = append(acts.Inserted, o)
}

// OnStatus 处理主合约订单状态回报；remaining 为 0 时释放槽位。
func (m *QuoteManager) OnStatus(id ID, filled, remaining int64) (Order, bool, error) {
	o, done, err := m.tracker.ApplyStatus(id, filled, remaining)
	if done {
		m.release(id)
	}
	return o, done, err
}

// OnError 交易所报错等同于 remaining=0 的状态回报，强制终结并释放槽位。
func (m *QuoteManager) OnError(id ID) (Order, error) {
	o, err := m.tracker.Fail(id)
	m.release(id)
	return o, err
}

func (m *QuoteManager) release(id ID) {
	if m.bid.id == id {
		m.bid = slot{}
	} else if m.ask.id == id {
		m.ask = slot{}
	}
}

// Slot 返回指定方向槽位的订单号、价格与状态。
func (m *QuoteManager) Slot(side Side) (ID, int64, SlotState) {
	s := m.ask
	if side == Buy {
		s = m.bid
	}
	if s.id == 0 {
		return 0, 0, SlotEmpty
	}
	o, ok := m.tracker.Get(s.id)
	if !ok {
		return s.id, s.price, SlotEmpty
	}
	switch o.Status {
	case StatusLive:
		return s.id, s.price, SlotLive
	case StatusCancelling:
		return s.id, s.price, SlotCancelling
	default:
		return s.id, s.price, SlotPendingLive
	}
}
