package engine

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hedged-mm/hedge"
	"hedged-mm/infrastructure/logger"
	"hedged-mm/infrastructure/monitor"
	"hedged-mm/inventory"
	"hedged-mm/market"
	"hedged-mm/order"
	"hedged-mm/strategy/asmm"
)

// Engine 单个交易会话的做市引擎。
// 所有事件必须由同一个 goroutine 依次调用，引擎内部不加锁，事件处理也不会阻塞。
type Engine struct {
	cfg     Config
	session string
	logger  *logger.Logger
	monitor *monitor.Monitor

	// 报价
	pricer  *asmm.Pricer
	window  *market.MidPriceWindow
	horizon *market.TimeHorizon
	depth   market.Depth
	lastMid float64 // 最小货币单位

	// 订单与仓位
	ids       order.IDSequence
	orders    *order.Tracker
	quotes    *order.QuoteManager
	hedger    *hedge.Controller
	inventory inventory.Tracker

	stats Statistics
}

// Statistics 会话统计
type Statistics struct {
	BookUpdates   int64
	QuoteCycles   int64
	SkippedCycles int64
	Fills         int64
	HedgeFills    int64
	Errors        int64
}

// Snapshot 会话状态快照
type Snapshot struct {
	Session  string
	Position int64
	Exposure inventory.Exposure
	Hedge    hedge.State
	Horizon  float64
	Variance float64
	Orders   []order.Order
	// LastOrderID 本会话最近分配的订单号
	LastOrderID order.ID
	Trigger     TriggerMode
	Stats       Statistics
}

// New 创建引擎，gw 接收所有下单与撤单意图。
func New(cfg Config, gw order.Gateway, log *logger.Logger, mon *monitor.Monitor) (*Engine, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	session := uuid.NewString()
	e := &Engine{
		cfg:     cfg,
		session: session,
		logger:  log.WithFields(zap.String("session", session)),
		monitor: mon,
		pricer:  asmm.NewPricer(cfg.Pricing),
		window:  market.NewMidPriceWindow(cfg.Lookback),
		horizon: market.NewTimeHorizon(cfg.TimeDecay, cfg.TimeFloor),
		orders:  order.NewTracker(),
	}
	e.quotes = order.NewQuoteManager(gw, e.orders, &e.ids, order.QuoteConfig{
		LotSize:       cfg.LotSize,
		PositionLimit: cfg.PositionLimit,
		EagerReplace:  cfg.EagerReplace,
		Bounds:        cfg.Bounds,
	})
	e.hedger = hedge.NewController(gw, e.orders, &e.ids, hedge.Config{
		LotSize:       cfg.HedgeLotSize,
		PositionLimit: cfg.PositionLimit,
		Bounds:        cfg.Bounds,
	})

	e.logger.Info("engine created",
		zap.String("quote_instrument", cfg.QuoteInstrument.String()),
		zap.Int64("lot_size", cfg.LotSize),
		zap.Int64("hedge_lot_size", cfg.HedgeLotSize),
		zap.Int64("position_limit", cfg.PositionLimit),
		zap.Float64("gamma", cfg.Pricing.Gamma),
		zap.Float64("k", cfg.Pricing.K),
		zap.String("trigger", cfg.Trigger.String()),
		zap.Bool("eager_replace", cfg.EagerReplace),
	)
	return e, nil
}

// Session 返回会话 ID
func (e *Engine) Session() string { return e.session }

// OnMarketData 处理一次盘口更新：非报价合约或单边盘口直接跳过，否则推进 T、
// 更新波动率窗口并重新报价。
func (e *Engine) OnMarketData(u market.BookUpdate) {
	e.stats.BookUpdates++
	if u.Instrument != e.cfg.QuoteInstrument {
		return
	}
	if !u.TwoSided() {
		e.stats.SkippedCycles++
		e.monitor.RecordSkippedCycle()
		e.logger.Debug("one-sided book, cycle skipped",
			zap.Int64("seq", u.Sequence),
			zap.Int64("best_bid", u.BestBid()),
			zap.Int64("best_ask", u.BestAsk()))
		return
	}

	e.depth.Update(u)
	e.monitor.UpdateBookDepth(e.depth.BidVolume, e.depth.AskVolume)

	e.window.Observe(u.Mid(e.cfg.Bounds.TickSize))
	horizon := e.horizon.Step()
	variance := e.window.Variance()
	position := e.inventory.Position()

	q := e.pricer.Quote(asmm.Inputs{
		BestBid:   u.BestBid(),
		BestAsk:   u.BestAsk(),
		Inventory: position,
		Variance:  variance,
		Horizon:   horizon,
	})
	e.lastMid = q.Mid * float64(e.cfg.Bounds.TickSize)
	e.stats.QuoteCycles++
	e.monitor.RecordQuote(q.Mid, q.Reservation, q.Spread, variance, horizon, q.Bid, q.Ask)
	e.logger.Debug("quote",
		zap.Int64("seq", u.Sequence),
		zap.Float64("mid", q.Mid),
		zap.Float64("reservation", q.Reservation),
		zap.Float64("spread", q.Spread),
		zap.Float64("variance", variance),
		zap.Float64("horizon", horizon),
		zap.Int64("bid", q.Bid),
		zap.Int64("ask", q.Ask),
		zap.Float64("imbalance", e.depth.Imbalance()),
		zap.Int64("position", position))

	acts := e.quotes.Reprice(q.Bid, q.Ask, position)
	e.report(acts)
	e.updateInventoryMetrics()
}

func (e *Engine) report(acts order.Actions) {
	for _, id := range acts.Cancelled {
		e.monitor.RecordOrderCanceled()
		e.logger.LogOrder("cancel", int64(id))
	}
	for _, o := range acts.Inserted {
		e.monitor.RecordOrderInserted(o.Kind.String())
		e.logger.LogOrder("insert", int64(o.ID),
			zap.String("kind", o.Kind.String()),
			zap.Int64("price", o.Price),
			zap.Int64("volume", o.Volume))
	}
	for _, o := range acts.Failed {
		e.monitor.RecordOrderRejected(o.Kind.String())
		e.logger.LogRisk("insert_not_sent",
			zap.Int64("order_id", int64(o.ID)),
			zap.String("kind", o.Kind.String()),
			zap.Int64("price", o.Price))
	}
	for _, k := range acts.Skipped {
		e.logger.LogRisk("quote_out_of_bounds", zap.String("kind", k.String()))
	}
}

// OnFill 处理主合约成交：更新仓位与敞口，按成交触发时重新对冲。
// 未跟踪的订单号（已终结或不属于本会话）被忽略。
func (e *Engine) OnFill(id order.ID, price, volume int64) {
	o, ok := e.orders.Get(id)
	if !ok || o.Kind.IsHedge() {
		e.logger.Debug("fill for untracked order ignored", zap.Int64("order_id", int64(id)))
		return
	}
	if _, _, err := e.orders.ApplyFill(id, volume); err != nil {
		e.logger.LogError(err, zap.Int64("order_id", int64(id)))
		return
	}

	delta := e.inventory.ApplyFill(o.Kind.Side() == order.Buy, price, volume)
	e.stats.Fills++
	e.monitor.RecordFill(o.Kind.String(), volume)
	exp := e.inventory.Exposure()
	e.logger.LogFill(int64(id), price, volume,
		zap.String("kind", o.Kind.String()),
		zap.Int64("delta", delta),
		zap.Int64("position", e.inventory.Position()),
		zap.Int64("exposure_price", exp.Price),
		zap.Int64("exposure_volume", exp.Volume))
	e.updateInventoryMetrics()

	if e.cfg.Trigger == HedgeOnFill {
		e.rebalance()
	}
}

// OnOrderStatus 处理订单状态回报，remaining 为 0 表示订单终结。
func (e *Engine) OnOrderStatus(id order.ID, filled, remaining, fees int64) {
	o, ok := e.orders.Get(id)
	if !ok {
		// 撤单回报晚于全部成交等情况
		e.logger.Debug("status for untracked order ignored",
			zap.Int64("order_id", int64(id)),
			zap.Int64("remaining", remaining))
	} else {
		var (
			done bool
			err  error
		)
		if o.Kind.IsHedge() {
			o, done, err = e.hedger.OnStatus(id, remaining)
		} else {
			o, done, err = e.quotes.OnStatus(id, filled, remaining)
		}
		if err != nil {
			e.logger.LogError(err, zap.Int64("order_id", int64(id)))
		} else {
			e.logger.LogOrder("status", int64(id),
				zap.String("kind", o.Kind.String()),
				zap.String("status", string(o.Status)),
				zap.Int64("filled", filled),
				zap.Int64("remaining", remaining),
				zap.Int64("fees", fees),
				zap.Bool("done", done))
		}
		if o.Kind.IsHedge() {
			e.updateHedgeMetrics()
		}
	}

	if e.cfg.Trigger == HedgeOnStatus {
		e.rebalance()
	}
}

// OnHedgeFill 处理对冲单成交，确认的对冲仓位随之更新。
func (e *Engine) OnHedgeFill(id order.ID, avgPrice, volume int64) {
	o, err := e.hedger.OnFill(id, volume)
	if err != nil {
		e.logger.Debug("hedge fill ignored",
			zap.Int64("order_id", int64(id)),
			zap.Error(err))
		return
	}
	e.stats.HedgeFills++
	e.monitor.RecordFill(o.Kind.String(), volume)
	st := e.hedger.State()
	e.logger.LogHedge("fill",
		zap.Int64("order_id", int64(id)),
		zap.Int64("avg_price", avgPrice),
		zap.Int64("volume", volume),
		zap.Int64("confirmed", st.Confirmed),
		zap.Int64("pending", st.Pending))
	e.updateHedgeMetrics()
}

// OnError 处理交易所错误。已知订单按终结处理并释放槽位，id 为 0 或未知时只记录日志。
func (e *Engine) OnError(id order.ID, message string) {
	e.stats.Errors++
	e.monitor.RecordVenueError()
	if id == 0 {
		e.logger.Warn("venue error", zap.String("message", message))
	} else if o, ok := e.orders.Get(id); !ok {
		e.logger.Debug("error for untracked order ignored",
			zap.Int64("order_id", int64(id)),
			zap.String("message", message))
	} else {
		var err error
		if o.Kind.IsHedge() {
			o, err = e.hedger.OnError(id)
			e.updateHedgeMetrics()
		} else {
			o, err = e.quotes.OnError(id)
		}
		if err != nil {
			e.logger.LogError(err, zap.Int64("order_id", int64(id)))
		} else {
			e.monitor.RecordOrderRejected(o.Kind.String())
			e.logger.Warn("order terminated by venue error",
				zap.Int64("order_id", int64(id)),
				zap.String("kind", o.Kind.String()),
				zap.String("message", message))
		}
	}

	if e.cfg.Trigger == HedgeOnStatus {
		e.rebalance()
	}
}

func (e *Engine) rebalance() {
	position := e.inventory.Position()
	o, ok, err := e.hedger.Rebalance(position)
	if err != nil {
		e.monitor.RecordOrderRejected(o.Kind.String())
		e.logger.LogError(fmt.Errorf("hedge order not sent: %w", err),
			zap.Int64("order_id", int64(o.ID)),
			zap.Int64("position", position))
		return
	}
	if !ok {
		return
	}
	e.monitor.RecordOrderInserted(o.Kind.String())
	st := e.hedger.State()
	e.logger.LogHedge("insert",
		zap.Int64("order_id", int64(o.ID)),
		zap.String("kind", o.Kind.String()),
		zap.Int64("price", o.Price),
		zap.Int64("volume", o.Volume),
		zap.Int64("position", position),
		zap.Int64("confirmed", st.Confirmed),
		zap.Int64("pending", st.Pending))
	e.updateHedgeMetrics()
}

func (e *Engine) updateInventoryMetrics() {
	exp := e.inventory.Exposure()
	e.monitor.UpdateInventory(e.inventory.Position(), exp.Volume, exp.Price, exp.Valuation(e.lastMid))
}

func (e *Engine) updateHedgeMetrics() {
	st := e.hedger.State()
	e.monitor.UpdateHedge(st.Confirmed, st.Pending)
}

// ApplyParams 在事件之间替换 γ、k 与对冲触发方式。结构性参数（手数、限额、最小价位）不可热更新。
func (e *Engine) ApplyParams(p Params) error {
	if !p.Trigger.Valid() {
		e.logger.Warn("params rejected", zap.Int("trigger", int(p.Trigger)))
		return fmt.Errorf("invalid params: unknown trigger mode %d", int(p.Trigger))
	}
	cfg := e.cfg.Pricing
	cfg.Gamma, cfg.K = p.Gamma, p.K
	if err := cfg.Validate(); err != nil {
		e.logger.Warn("params rejected", zap.Error(err))
		return fmt.Errorf("invalid params: %w", err)
	}
	e.pricer.SetRisk(p.Gamma, p.K)
	e.cfg.Pricing = cfg
	e.cfg.Trigger = p.Trigger
	e.logger.Info("params applied",
		zap.Float64("gamma", p.Gamma),
		zap.Float64("k", p.K),
		zap.String("trigger", p.Trigger.String()))
	return nil
}

// Snapshot 返回当前会话状态
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Session:     e.session,
		Position:    e.inventory.Position(),
		Exposure:    e.inventory.Exposure(),
		Hedge:       e.hedger.State(),
		Horizon:     e.horizon.Value(),
		Variance:    e.window.Variance(),
		Orders:      e.orders.List(),
		LastOrderID: e.ids.Last(),
		Trigger:     e.cfg.Trigger,
		Stats:       e.stats,
	}
}

// Slot 返回主合约指定方向的报价槽位
func (e *Engine) Slot(side order.Side) (order.ID, int64, order.SlotState) {
	return e.quotes.Slot(side)
}
