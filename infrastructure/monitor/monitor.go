package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor Prometheus监控指标收集器。所有方法允许 nil 接收者，未启用监控时为空操作。
type Monitor struct {
	registry *prometheus.Registry

	// 报价指标
	midPrice         prometheus.Gauge
	reservationPrice prometheus.Gauge
	spread           prometheus.Gauge
	variance         prometheus.Gauge
	timeHorizon      prometheus.Gauge
	bidPrice         prometheus.Gauge
	askPrice         prometheus.Gauge
	quoteCycles      prometheus.Counter
	skippedCycles    prometheus.Counter
	bookBidVolume    prometheus.Gauge
	bookAskVolume    prometheus.Gauge

	// 订单指标
	ordersInserted *prometheus.CounterVec
	ordersCanceled prometheus.Counter
	ordersRejected *prometheus.CounterVec
	venueErrors    prometheus.Counter

	// 成交与仓位指标
	fills          *prometheus.CounterVec
	filledVolume   *prometheus.CounterVec
	position       prometheus.Gauge
	exposureVolume prometheus.Gauge
	exposurePrice  prometheus.Gauge
	unrealizedPnL  prometheus.Gauge

	// 对冲指标
	hedgeConfirmed prometheus.Gauge
	hedgePending   prometheus.Gauge

	// 传输层指标
	feedMessages   *prometheus.CounterVec
	feedReconnects prometheus.Counter
}

// Config 监控配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "mm",
		Subsystem: "engine",
	}
}

// New 创建新的Monitor实例
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help,
		}, labels)
	}

	return &Monitor{
		registry: reg,

		midPrice:         gauge("mid_price", "报价合约 mid（整 tick）"),
		reservationPrice: gauge("reservation_price", "保留价格（整 tick）"),
		spread:           gauge("spread", "最优价差（整 tick）"),
		variance:         gauge("mid_variance", "mid 滚动方差"),
		timeHorizon:      gauge("time_horizon", "剩余时间因子 T"),
		bidPrice:         gauge("quote_bid_price", "目标买价"),
		askPrice:         gauge("quote_ask_price", "目标卖价"),
		quoteCycles:      counter("quote_cycles_total", "报价周期数"),
		skippedCycles:    counter("skipped_cycles_total", "因单边或空盘口跳过的周期数"),
		bookBidVolume:    gauge("book_bid_volume", "五档买量合计"),
		bookAskVolume:    gauge("book_ask_volume", "五档卖量合计"),

		ordersInserted: counterVec("orders_inserted_total", "发出的订单数", "kind"),
		ordersCanceled: counter("orders_canceled_total", "发出的撤单数"),
		ordersRejected: counterVec("orders_rejected_total", "被拒或发送失败的订单数", "kind"),
		venueErrors:    counter("venue_errors_total", "交易所错误回报数"),

		fills:          counterVec("fills_total", "成交笔数", "kind"),
		filledVolume:   counterVec("filled_volume_total", "成交量", "kind"),
		position:       gauge("position", "主合约净仓位"),
		exposureVolume: gauge("exposure_volume", "敞口数量"),
		exposurePrice:  gauge("exposure_price", "敞口均价"),
		unrealizedPnL:  gauge("unrealized_pnl", "敞口未实现盈亏（最小货币单位）"),

		hedgeConfirmed: gauge("hedge_confirmed", "已确认对冲仓位"),
		hedgePending:   gauge("hedge_pending", "在途对冲量"),

		feedMessages:   counterVec("feed_messages_total", "传输层消息数", "direction"),
		feedReconnects: counter("feed_reconnects_total", "传输层重连次数"),
	}
}

// RecordQuote 记录一次报价周期的定价结果
func (m *Monitor) RecordQuote(mid, reservation, spread, variance, horizon float64, bid, ask int64) {
	if m == nil {
		return
	}
	m.quoteCycles.Inc()
	m.midPrice.Set(mid)
	m.reservationPrice.Set(reservation)
	m.spread.Set(spread)
	m.variance.Set(variance)
	m.timeHorizon.Set(horizon)
	m.bidPrice.Set(float64(bid))
	m.askPrice.Set(float64(ask))
}

func (m *Monitor) RecordSkippedCycle() {
	if m == nil {
		return
	}
	m.skippedCycles.Inc()
}

func (m *Monitor) UpdateBookDepth(bidVolume, askVolume int64) {
	if m == nil {
		return
	}
	m.bookBidVolume.Set(float64(bidVolume))
	m.bookAskVolume.Set(float64(askVolume))
}

// 订单相关方法
func (m *Monitor) RecordOrderInserted(kind string) {
	if m == nil {
		return
	}
	m.ordersInserted.WithLabelValues(kind).Inc()
}

func (m *Monitor) RecordOrderCanceled() {
	if m == nil {
		return
	}
	m.ordersCanceled.Inc()
}

func (m *Monitor) RecordOrderRejected(kind string) {
	if m == nil {
		return
	}
	m.ordersRejected.WithLabelValues(kind).Inc()
}

func (m *Monitor) RecordVenueError() {
	if m == nil {
		return
	}
	m.venueErrors.Inc()
}

// 成交与仓位相关方法
func (m *Monitor) RecordFill(kind string, volume int64) {
	if m == nil {
		return
	}
	m.fills.WithLabelValues(kind).Inc()
	m.filledVolume.WithLabelValues(kind).Add(float64(volume))
}

func (m *Monitor) UpdateInventory(position, exposureVolume, exposurePrice int64, unrealized float64) {
	if m == nil {
		return
	}
	m.position.Set(float64(position))
	m.exposureVolume.Set(float64(exposureVolume))
	m.exposurePrice.Set(float64(exposurePrice))
	m.unrealizedPnL.Set(unrealized)
}

func (m *Monitor) UpdateHedge(confirmed, pending int64) {
	if m == nil {
		return
	}
	m.hedgeConfirmed.Set(float64(confirmed))
	m.hedgePending.Set(float64(pending))
}

// 传输层相关方法
func (m *Monitor) RecordFeedMessage(direction string) {
	if m == nil {
		return
	}
	m.feedMessages.WithLabelValues(direction).Inc()
}

func (m *Monitor) RecordFeedReconnect() {
	if m == nil {
		return
	}
	m.feedReconnects.Inc()
}

// Handler 返回HTTP handler用于暴露指标
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回prometheus registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Serve 在 addr 上暴露 /metrics，阻塞直到监听失败。
func (m *Monitor) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
