package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"hedged-mm/config"
	"hedged-mm/gateway"
	"hedged-mm/infrastructure/logger"
	"hedged-mm/infrastructure/monitor"
	"hedged-mm/internal/engine"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	feedURL := flag.String("feed", "", "事件流 websocket 地址，覆盖配置；均为空时使用标准输入输出")
	watch := flag.Bool("watch", true, "监听配置文件变更并热更新定价参数")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *feedURL != "" {
		cfg.Feed.URL = *feedURL
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer lg.Close()

	if err := run(cfg, *cfgPath, *watch, lg); err != nil && !errors.Is(err, context.Canceled) {
		lg.LogError(err)
		_ = lg.Sync()
		os.Exit(1)
	}
}

func run(cfg config.AppConfig, cfgPath string, watch bool, lg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon := monitor.New(monitor.DefaultConfig())
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := mon.Serve(cfg.Metrics.Addr); err != nil {
				lg.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	var dial gateway.Dialer
	if cfg.Feed.URL != "" {
		dial = gateway.WSDialer(cfg.Feed.URL, time.Minute)
	} else {
		// stdout 输出订单意图，日志需写到 stderr 或文件
		if slices.Contains(cfg.Log.Outputs, "stdout") {
			return errors.New("log output stdout conflicts with line-delimited event stream")
		}
		dial = gateway.LineDialer(os.Stdin, os.Stdout)
	}
	client := gateway.NewClient(dial, gateway.ClientOptions{
		Limiter: gateway.NewTokenBucketLimiter(cfg.Feed.MessageRate, cfg.Feed.Burst),
		Logger:  lg,
		Monitor: mon,
	})

	engCfg, err := engine.ConfigFromApp(cfg)
	if err != nil {
		return err
	}
	eng, err := engine.New(engCfg, client, lg, mon)
	if err != nil {
		return err
	}
	lg = lg.WithFields(zap.String("session", eng.Session()))

	updates := make(chan engine.Params, 1)
	if watch {
		w := config.Watcher{
			Path:     cfgPath,
			Cooldown: time.Second,
			OnError:  func(err error) { lg.Warn("config reload failed", zap.Error(err)) },
		}
		go func() {
			err := w.Start(ctx, func(app config.AppConfig) {
				p, err := engine.ParamsFromApp(app)
				if err != nil {
					lg.Warn("config reload rejected", zap.Error(err))
					return
				}
				// 只保留最新一次
				select {
				case <-updates:
				default:
				}
				updates <- p
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				lg.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	events := make(chan gateway.Event, 1024)
	feedDone := make(chan error, 1)
	go func() {
		feedDone <- client.Run(ctx, events)
	}()

	notify(lg, daemon.SdNotifyReady)
	go watchdog(ctx, lg)
	lg.Info("autotrader started", zap.String("feed", cfg.Feed.URL), zap.String("env", cfg.Env))

	err = loop(ctx, eng, client, events, updates, feedDone)
	notify(lg, daemon.SdNotifyStopping)
	snap := eng.Snapshot()
	lg.Info("autotrader stopped",
		zap.Int64("position", snap.Position),
		zap.Int64("hedge_confirmed", snap.Hedge.Confirmed),
		zap.Int64("hedge_pending", snap.Hedge.Pending),
		zap.Int("open_orders", len(snap.Orders)),
		zap.Int64("last_order_id", int64(snap.LastOrderID)),
		zap.Int64("quote_cycles", snap.Stats.QuoteCycles),
		zap.Int64("fills", snap.Stats.Fills))
	return err
}

func notify(lg *logger.Logger, state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		lg.Debug("sd_notify failed", zap.String("state", state), zap.Error(err))
	}
}

// watchdog 按 systemd WatchdogSec 的一半间隔发送心跳，未启用时直接返回。
func watchdog(ctx context.Context, lg *logger.Logger) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			notify(lg, daemon.SdNotifyWatchdog)
		}
	}
}
