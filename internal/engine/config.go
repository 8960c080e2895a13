package engine

import (
	"fmt"

	"hedged-mm/config"
	"hedged-mm/market"
	"hedged-mm/order"
	"hedged-mm/strategy/asmm"
)

// TriggerMode 决定何时重新计算对冲。
type TriggerMode int

const (
	// HedgeOnFill 主合约成交后对冲
	HedgeOnFill TriggerMode = iota
	// HedgeOnStatus 每次订单状态回报（含错误）后对冲
	HedgeOnStatus
)

// Valid 判断是否为已知的触发方式
func (m TriggerMode) Valid() bool {
	return m == HedgeOnFill || m == HedgeOnStatus
}

// String 返回触发方式名称
func (m TriggerMode) String() string {
	if m == HedgeOnStatus {
		return "status"
	}
	return "fill"
}

// Config 引擎配置
type Config struct {
	QuoteInstrument market.Instrument
	LotSize         int64
	HedgeLotSize    int64
	PositionLimit   int64
	Bounds          order.PriceBounds
	Pricing         asmm.Config
	Lookback        int
	TimeDecay       float64
	TimeFloor       float64
	Trigger         TriggerMode
	EagerReplace    bool
}

// DefaultConfig 返回参考参数。
func DefaultConfig() Config {
	cfg, _ := ConfigFromApp(config.Default())
	return cfg
}

// Params 可在会话中途替换的参数。
type Params struct {
	Gamma   float64
	K       float64
	Trigger TriggerMode
}

// ConfigFromApp 将 YAML 配置转换为引擎配置。
func ConfigFromApp(app config.AppConfig) (Config, error) {
	inst, err := config.ParseInstrument(app.Engine.QuoteInstrument)
	if err != nil {
		return Config{}, err
	}
	p, err := ParamsFromApp(app)
	if err != nil {
		return Config{}, err
	}
	return Config{
		QuoteInstrument: market.Instrument(inst),
		LotSize:         app.Engine.LotSize,
		HedgeLotSize:    app.Engine.HedgeLotSize,
		PositionLimit:   app.Engine.PositionLimit,
		Bounds: order.PriceBounds{
			TickSize:   app.Engine.TickSize,
			MinimumBid: app.Engine.MinimumBid,
			MaximumAsk: app.Engine.MaximumAsk,
		},
		Pricing: asmm.Config{
			Gamma:    p.Gamma,
			K:        p.K,
			TickSize: app.Engine.TickSize,
		},
		Lookback:     app.Pricing.Lookback,
		TimeDecay:    app.Pricing.TimeDecay,
		TimeFloor:    app.Pricing.TimeFloor,
		Trigger:      p.Trigger,
		EagerReplace: app.Engine.EagerReplace,
	}, nil
}

// ParamsFromApp 提取可热更新的参数。
func ParamsFromApp(app config.AppConfig) (Params, error) {
	if err := config.ValidatePricing(app.Pricing); err != nil {
		return Params{}, err
	}
	trigger, err := config.ParseTrigger(app.Hedge.Trigger)
	if err != nil {
		return Params{}, err
	}
	p := Params{Gamma: app.Pricing.Gamma, K: app.Pricing.K}
	if trigger == "status" {
		p.Trigger = HedgeOnStatus
	}
	return p, nil
}

func validateConfig(cfg Config) error {
	if cfg.LotSize <= 0 || cfg.HedgeLotSize <= 0 {
		return fmt.Errorf("lot sizes must be > 0")
	}
	if cfg.PositionLimit < cfg.LotSize {
		return fmt.Errorf("position limit %d below lot size %d", cfg.PositionLimit, cfg.LotSize)
	}
	if cfg.Bounds.TickSize != cfg.Pricing.TickSize {
		return fmt.Errorf("tick size mismatch: bounds %d pricing %d", cfg.Bounds.TickSize, cfg.Pricing.TickSize)
	}
	if err := cfg.Pricing.Validate(); err != nil {
		return err
	}
	if !cfg.Trigger.Valid() {
		return fmt.Errorf("unknown trigger mode %d", int(cfg.Trigger))
	}
	if cfg.Lookback <= 0 {
		return fmt.Errorf("lookback must be > 0")
	}
	if cfg.TimeFloor <= 0 {
		return fmt.Errorf("time floor must be > 0")
	}
	return nil
}
