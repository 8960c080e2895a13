package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"hedged-mm/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env     string        `yaml:"env"`
	Engine  EngineConfig  `yaml:"engine"`
	Pricing PricingConfig `yaml:"pricing"`
	Hedge   HedgeConfig   `yaml:"hedge"`
	Feed    FeedConfig    `yaml:"feed"`
	Log     logger.Config `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// EngineConfig 合约与仓位相关的结构性参数，不支持热更新。
type EngineConfig struct {
	LotSize         int64  `yaml:"lotSize"`         // 报价单手数
	HedgeLotSize    int64  `yaml:"hedgeLotSize"`    // 对冲容忍带宽
	PositionLimit   int64  `yaml:"positionLimit"`   // 单边仓位上限
	TickSize        int64  `yaml:"tickSize"`        // 最小货币单位/tick
	MinimumBid      int64  `yaml:"minimumBid"`      // 交易所最低买价
	MaximumAsk      int64  `yaml:"maximumAsk"`      // 交易所最高卖价
	QuoteInstrument string `yaml:"quoteInstrument"` // 驱动报价的盘口：future / etf
	EagerReplace    bool   `yaml:"eagerReplace"`    // 撤单发出即释放槽位
}

// PricingConfig 定价参数，可热更新 gamma/k。
type PricingConfig struct {
	Gamma     float64 `yaml:"gamma"`
	K         float64 `yaml:"k"`
	Lookback  int     `yaml:"lookback"`
	TimeDecay float64 `yaml:"timeDecay"`
	TimeFloor float64 `yaml:"timeFloor"`
}

// HedgeConfig 对冲触发方式：fill（主合约成交后）或 status（每次状态回报后）。
type HedgeConfig struct {
	Trigger string `yaml:"trigger"`
}

// FeedConfig 事件传输参数。URL 为空时使用标准输入输出。
type FeedConfig struct {
	URL         string  `yaml:"url"`
	MessageRate float64 `yaml:"messageRate"` // 每秒出站消息数
	Burst       int     `yaml:"burst"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // 留空则关闭
}

// Default returns the reference configuration.
func Default() AppConfig {
	return AppConfig{
		Env: "dev",
		Engine: EngineConfig{
			LotSize:         10,
			HedgeLotSize:    10,
			PositionLimit:   100,
			TickSize:        100,
			MinimumBid:      1,
			MaximumAsk:      2147483647,
			QuoteInstrument: "future",
		},
		Pricing: PricingConfig{
			Gamma:     0.05,
			K:         1,
			Lookback:  10,
			TimeDecay: 0.002,
			TimeFloor: 0.000001,
		},
		Hedge: HedgeConfig{Trigger: "fill"},
		Feed: FeedConfig{
			MessageRate: 50,
			Burst:       50,
		},
		Log: logger.DefaultConfig(),
	}
}

// Load reads YAML config from path on top of Default and validates it.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		// 写入途中被截断的文件
		return cfg, ErrInvalid("config file is empty")
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides deployment fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("MM_FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("MM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MM_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	return cfg, Validate(cfg)
}

// Validate ensures required fields are present and consistent.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return ErrInvalid("env is required")
	}
	e := cfg.Engine
	if e.LotSize <= 0 || e.HedgeLotSize <= 0 {
		return ErrInvalid("engine.lotSize/hedgeLotSize must be > 0")
	}
	if e.PositionLimit < e.LotSize {
		return ErrInvalid("engine.positionLimit must be >= lotSize")
	}
	if e.TickSize <= 0 {
		return ErrInvalid("engine.tickSize must be > 0")
	}
	if e.MinimumBid <= 0 || e.MaximumAsk <= e.MinimumBid+e.TickSize {
		return ErrInvalid("engine.minimumBid/maximumAsk must leave at least one tick")
	}
	if _, err := ParseInstrument(e.QuoteInstrument); err != nil {
		return err
	}
	if err := ValidatePricing(cfg.Pricing); err != nil {
		return err
	}
	if _, err := ParseTrigger(cfg.Hedge.Trigger); err != nil {
		return err
	}
	if cfg.Feed.MessageRate < 0 || cfg.Feed.Burst < 0 {
		return ErrInvalid("feed.messageRate/burst must be >= 0")
	}
	return nil
}

// ValidatePricing 校验可热更新的定价参数。
func ValidatePricing(p PricingConfig) error {
	if !(p.Gamma > 0) || math.IsInf(p.Gamma, 0) {
		return ErrInvalid("pricing.gamma must be > 0")
	}
	if !(p.K > 0) || math.IsInf(p.K, 0) {
		return ErrInvalid("pricing.k must be > 0")
	}
	if p.Lookback <= 0 {
		return ErrInvalid("pricing.lookback must be > 0")
	}
	if p.TimeDecay < 0 || p.TimeDecay >= 1 {
		return ErrInvalid("pricing.timeDecay must be in [0, 1)")
	}
	if !(p.TimeFloor > 0) || p.TimeFloor > 1 {
		return ErrInvalid("pricing.timeFloor must be in (0, 1]")
	}
	return nil
}

// ParseInstrument 将配置中的合约名转为编号：future=0，etf=1。
func ParseInstrument(name string) (int, error) {
	switch strings.ToLower(name) {
	case "future", "futures":
		return 0, nil
	case "etf":
		return 1, nil
	default:
		return 0, ErrInvalid(fmt.Sprintf("engine.quoteInstrument %q must be future or etf", name))
	}
}

// ParseTrigger 校验对冲触发方式。
func ParseTrigger(name string) (string, error) {
	switch strings.ToLower(name) {
	case "fill", "status":
		return strings.ToLower(name), nil
	default:
		return "", ErrInvalid(fmt.Sprintf("hedge.trigger %q must be fill or status", name))
	}
}
