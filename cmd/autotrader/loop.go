package main

import (
	"context"

	"hedged-mm/gateway"
	"hedged-mm/internal/engine"
)

// session 是事件循环驱动的引擎接口。
type session interface {
	gateway.Handler
	ApplyParams(p engine.Params) error
}

// stream 是事件流的发送端控制，由 gateway.Client 实现。
type stream interface {
	InputDone() <-chan struct{}
	CloseSend()
}

// loop 在单个 goroutine 中依次处理事件与参数更新，直到 ctx 结束或事件流退出。
// 输入结束时先处理完已读入的事件，再关闭发送端，使这些事件触发的意图得以写出。
func loop(ctx context.Context, s session, st stream, events <-chan gateway.Event, updates <-chan engine.Params, feedDone <-chan error) error {
	inputDone := st.InputDone()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-inputDone:
			drain(s, events)
			st.CloseSend()
			inputDone = nil
		case err := <-feedDone:
			// 处理已读入但尚未分发的事件
			drain(s, events)
			return err
		case ev := <-events:
			gateway.Dispatch(s, ev)
		case p := <-updates:
			// 失败时保留原参数，原因已由引擎记录
			_ = s.ApplyParams(p)
		}
	}
}

func drain(s session, events <-chan gateway.Event) {
	for {
		select {
		case ev := <-events:
			gateway.Dispatch(s, ev)
		default:
			return
		}
	}
}
