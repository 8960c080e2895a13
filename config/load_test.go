package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
env: dev
engine:
  lotSize: 5
  positionLimit: 50
pricing:
  gamma: 0.1
hedge:
  trigger: status
feed:
  url: ws://127.0.0.1:9000/events
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.LotSize != 5 || cfg.Engine.PositionLimit != 50 {
		t.Fatalf("unexpected engine values: %+v", cfg.Engine)
	}
	// 未出现的字段保留默认值
	if cfg.Engine.TickSize != 100 || cfg.Engine.HedgeLotSize != 10 || cfg.Pricing.K != 1 {
		t.Fatalf("defaults not kept: %+v %+v", cfg.Engine, cfg.Pricing)
	}
	if cfg.Pricing.Gamma != 0.1 || cfg.Hedge.Trigger != "status" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected cfg values: %+v", cfg)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, `
env: prod
feed:
  url: ws://a
`)
	t.Setenv("MM_FEED_URL", "ws://b")
	t.Setenv("MM_METRICS_ADDR", ":9200")
	t.Setenv("MM_LOG_LEVEL", "warn")
	cfg, err := LoadWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Feed.URL != "ws://b" || cfg.Metrics.Addr != ":9200" || cfg.Log.Level != "warn" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
	path := writeTempConfig(t, "env: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"empty env", func(c *AppConfig) { c.Env = "" }},
		{"zero lot", func(c *AppConfig) { c.Engine.LotSize = 0 }},
		{"limit below lot", func(c *AppConfig) { c.Engine.PositionLimit = 5 }},
		{"zero tick", func(c *AppConfig) { c.Engine.TickSize = 0 }},
		{"inverted bounds", func(c *AppConfig) { c.Engine.MaximumAsk = 50 }},
		{"bad instrument", func(c *AppConfig) { c.Engine.QuoteInstrument = "option" }},
		{"zero gamma", func(c *AppConfig) { c.Pricing.Gamma = 0 }},
		{"negative k", func(c *AppConfig) { c.Pricing.K = -1 }},
		{"zero lookback", func(c *AppConfig) { c.Pricing.Lookback = 0 }},
		{"zero floor", func(c *AppConfig) { c.Pricing.TimeFloor = 0 }},
		{"bad trigger", func(c *AppConfig) { c.Hedge.Trigger = "timer" }},
		{"negative rate", func(c *AppConfig) { c.Feed.MessageRate = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			var invalid ErrInvalid
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestParseInstrument(t *testing.T) {
	if v, err := ParseInstrument("ETF"); err != nil || v != 1 {
		t.Fatalf("unexpected etf parse %d %v", v, err)
	}
	if v, err := ParseInstrument("future"); err != nil || v != 0 {
		t.Fatalf("unexpected future parse %d %v", v, err)
	}
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	path := writeTempConfig(t, "  \n")
	var invalid ErrInvalid
	if _, err := Load(path); !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalid for empty file, got %v", err)
	}
}
