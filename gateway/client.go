package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"hedged-mm/infrastructure/logger"
	"hedged-mm/infrastructure/monitor"
	"hedged-mm/order"
)

// ErrQueueFull 出站队列已满，意图未被接受。
var ErrQueueFull = errors.New("intent queue full")

// ClientOptions 传输客户端参数
type ClientOptions struct {
	Limiter        RateLimiter
	QueueSize      int
	ReconnectDelay time.Duration
	Logger         *logger.Logger
	Monitor        *monitor.Monitor
}

// Client 连接事件流：读循环解码入站事件，写循环按限速发送订单意图。
// 它实现 order.Gateway，引擎调用时只入队，不阻塞。
type Client struct {
	dial    Dialer
	opts    ClientOptions
	logger  *logger.Logger
	intents chan Intent

	inputDone chan struct{}
	inputOnce sync.Once
	closeSend chan struct{}
	closeOnce sync.Once
}

var _ order.Gateway = (*Client)(nil)

func NewClient(dial Dialer, opts ClientOptions) *Client {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Client{
		dial:    dial,
		opts:    opts,
		logger:  opts.Logger.WithFields(zap.String("component", "gateway")),
		intents: make(chan Intent, opts.QueueSize),

		inputDone: make(chan struct{}),
		closeSend: make(chan struct{}),
	}
}

// InputDone 在入站流读到结尾（io.EOF）后关闭。此前读到的事件都已投递到 events。
func (c *Client) InputDone() <-chan struct{} { return c.inputDone }

// CloseSend 通知写循环发完队列中剩余的意图后退出。输入结束后 Run 等到此调用才返回。
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() { close(c.closeSend) })
}

func (c *Client) InsertOrder(id order.ID, side order.Side, price, volume int64, lifespan order.Lifespan) error {
	return c.enqueue(Intent{Type: IntentInsert, OrderID: id, Side: side, Price: price, Volume: volume, Lifespan: lifespan})
}

func (c *Client) CancelOrder(id order.ID) error {
	return c.enqueue(Intent{Type: IntentCancel, OrderID: id})
}

func (c *Client) InsertHedgeOrder(id order.ID, side order.Side, price, volume int64) error {
	return c.enqueue(Intent{Type: IntentHedge, OrderID: id, Side: side, Price: price, Volume: volume, Lifespan: order.FillAndKill})
}

func (c *Client) enqueue(in Intent) error {
	select {
	case c.intents <- in:
		return nil
	default:
		return fmt.Errorf("%s order %d: %w", in.Type, in.OrderID, ErrQueueFull)
	}
}

// Run 连接并收发消息直到 ctx 取消，或输入结束（io.EOF）且 CloseSend 后队列已发完。
// 连接断开或写失败后按 ReconnectDelay 重连；未能送出的意图以 error 事件回送给引擎。
func (c *Client) Run(ctx context.Context, events chan<- Event) error {
	for {
		conn, err := c.dial(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			c.logger.Warn("dial failed", zap.Error(err))
		} else {
			err = c.serve(ctx, conn, events)
			if err == nil || errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.Warn("connection lost", zap.Error(err))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.opts.Monitor.RecordFeedReconnect()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.ReconnectDelay):
		}
	}
}

func (c *Client) serve(ctx context.Context, conn Conn, events chan<- Event) error {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	// 关闭连接以打断阻塞中的读
	stop := context.AfterFunc(connCtx, func() { _ = conn.Close() })
	defer stop()

	writeErr := make(chan error, 1)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if err := c.writeLoop(ctx, connCtx, conn, events); err != nil {
			writeErr <- err
			// 写端失效时拆掉整条连接，由 Run 重连
			cancel()
		}
	}()

	err := c.readLoop(connCtx, conn, events)
	if errors.Is(err, io.EOF) {
		c.inputOnce.Do(func() { close(c.inputDone) })
		// 输入结束后写循环继续工作，直到 CloseSend 后清空队列
		select {
		case <-writerDone:
		case <-connCtx.Done():
		}
	}
	cancel()
	<-writerDone
	select {
	case werr := <-writeErr:
		if ctx.Err() == nil {
			return werr
		}
	default:
	}
	return err
}

func (c *Client) readLoop(ctx context.Context, conn Conn, events chan<- Event) error {
	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		c.opts.Monitor.RecordFeedMessage("in")
		ev, err := DecodeEvent(raw)
		if err != nil {
			c.logger.Warn("bad message dropped", zap.Error(err), zap.ByteString("raw", raw))
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// writeLoop 在 connCtx 结束、CloseSend 后队列清空或首次发送失败时退出。
// 发送失败时返回错误，剩余意图留给下一条连接；失败事件经 ctx 投递，连接断开后仍能送达引擎。
func (c *Client) writeLoop(ctx, connCtx context.Context, conn Conn, events chan<- Event) error {
	for {
		var in Intent
		select {
		case <-connCtx.Done():
			return nil
		case <-c.closeSend:
			return c.flush(ctx, connCtx, conn, events)
		case in = <-c.intents:
		}
		if err := c.write(ctx, connCtx, conn, in, events); err != nil {
			return err
		}
	}
}

// flush 发送队列中已有的意图，队列为空即返回。
func (c *Client) flush(ctx, connCtx context.Context, conn Conn, events chan<- Event) error {
	for {
		select {
		case in := <-c.intents:
			if err := c.write(ctx, connCtx, conn, in, events); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (c *Client) write(ctx, connCtx context.Context, conn Conn, in Intent, events chan<- Event) error {
	err := c.send(connCtx, conn, in)
	if err == nil {
		return nil
	}
	c.logger.Warn("intent not sent", zap.Error(err),
		zap.String("type", string(in.Type)),
		zap.Int64("order_id", int64(in.OrderID)))
	c.fail(ctx, in, err, events)
	return fmt.Errorf("send %s order %d: %w", in.Type, in.OrderID, err)
}

func (c *Client) send(ctx context.Context, conn Conn, in Intent) error {
	if c.opts.Limiter != nil {
		if err := c.opts.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	msg, err := EncodeIntent(in)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(msg); err != nil {
		return err
	}
	c.opts.Monitor.RecordFeedMessage("out")
	return nil
}

// fail 将未送出的下单意图转成 error 事件，使引擎释放对应订单。
// 撤单重新入队，订单在交易所仍然有效。
func (c *Client) fail(ctx context.Context, in Intent, err error, events chan<- Event) {
	if in.Type == IntentCancel {
		if c.enqueue(in) != nil {
			c.logger.Error("cancel dropped", zap.Int64("order_id", int64(in.OrderID)))
		}
		return
	}
	ev := Event{Type: EventError, OrderID: in.OrderID, Message: err.Error()}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
