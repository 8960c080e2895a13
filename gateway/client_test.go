package gateway

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedged-mm/order"
)

func runClient(ctx context.Context, c *Client, events chan Event) <-chan error {
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, events) }()
	return done
}

func recvEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestClient_LineStream(t *testing.T) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	c := NewClient(LineDialer(inR, outW), ClientOptions{})
	events := make(chan Event, 4)
	done := runClient(context.Background(), c, events)

	require.NoError(t, c.InsertOrder(1, order.Buy, 10100, 10, order.GoodForDay))
	out := bufio.NewScanner(outR)
	require.True(t, out.Scan())
	assert.JSONEq(t, `{"type":"insert","data":{"orderId":1,"side":1,"price":10100,"volume":10,"lifespan":1}}`, out.Text())

	_, err := io.WriteString(inW, "{\"type\":\"fill\",\"data\":{\"orderId\":1,\"price\":10100,\"volume\":5}}\n\ngarbage\n")
	require.NoError(t, err)
	ev := recvEvent(t, events)
	assert.Equal(t, Event{Type: EventFill, OrderID: 1, Price: 10100, Volume: 5}, ev)

	require.NoError(t, inW.Close())
	select {
	case <-c.InputDone():
	case <-time.After(2 * time.Second):
		t.Fatal("end of input not signalled")
	}
	c.CloseSend()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop at end of input")
	}
}

func TestClient_FlushesQueueAfterEndOfInput(t *testing.T) {
	var out strings.Builder
	in := strings.NewReader(`{"type":"status","data":{"orderId":1,"filled":0,"remaining":0}}` + "\n")
	c := NewClient(LineDialer(in, &out), ClientOptions{})
	events := make(chan Event, 4)
	done := runClient(context.Background(), c, events)

	assert.Equal(t, EventStatus, recvEvent(t, events).Type)
	select {
	case <-c.InputDone():
	case <-time.After(2 * time.Second):
		t.Fatal("end of input not signalled")
	}
	// 输入结束后下的单仍需写出
	require.NoError(t, c.InsertOrder(2, order.Sell, 10200, 10, order.GoodForDay))
	require.NoError(t, c.CancelOrder(1))
	select {
	case <-done:
		t.Fatal("client stopped before CloseSend")
	case <-time.After(20 * time.Millisecond):
	}

	c.CloseSend()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop after CloseSend")
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"type":"insert"`)
	assert.Contains(t, lines[1], `"type":"cancel"`)
}

func TestClient_QueueFull(t *testing.T) {
	c := NewClient(LineDialer(strings.NewReader(""), io.Discard), ClientOptions{QueueSize: 1})

	require.NoError(t, c.CancelOrder(1))
	assert.ErrorIs(t, c.CancelOrder(2), ErrQueueFull)
}

// blockingConn 读阻塞直到关闭，写总是失败。
type blockingConn struct {
	closed chan struct{}
	once   sync.Once
}

func newBlockingConn() *blockingConn { return &blockingConn{closed: make(chan struct{})} }

func (c *blockingConn) ReadMessage() ([]byte, error) {
	<-c.closed
	return nil, errors.New("use of closed connection")
}

func (c *blockingConn) WriteMessage([]byte) error { return errors.New("broken pipe") }

func (c *blockingConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func TestClient_FailedInsertBecomesErrorEvent(t *testing.T) {
	conn := newBlockingConn()
	dial := func(ctx context.Context) (Conn, error) { return conn, nil }
	c := NewClient(dial, ClientOptions{})
	events := make(chan Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := runClient(ctx, c, events)

	require.NoError(t, c.InsertHedgeOrder(7, order.Sell, 100, 20))
	ev := recvEvent(t, events)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, order.ID(7), ev.OrderID)
	assert.Contains(t, ev.Message, "broken pipe")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop on cancel")
	}
}

// recordingConn 读阻塞直到关闭，写入的消息转发到 sent。
type recordingConn struct {
	*blockingConn
	sent chan string
}

func (c *recordingConn) WriteMessage(msg []byte) error {
	c.sent <- string(msg)
	return nil
}

func TestClient_WriteFailureReconnects(t *testing.T) {
	var mu sync.Mutex
	var dials int
	good := &recordingConn{blockingConn: newBlockingConn(), sent: make(chan string, 4)}
	dial := func(ctx context.Context) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		dials++
		if dials == 1 {
			return newBlockingConn(), nil
		}
		return good, nil
	}
	c := NewClient(dial, ClientOptions{ReconnectDelay: time.Millisecond})
	require.NoError(t, c.InsertOrder(1, order.Buy, 10100, 10, order.GoodForDay))
	require.NoError(t, c.InsertOrder(2, order.Sell, 10200, 10, order.GoodForDay))

	events := make(chan Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := runClient(ctx, c, events)

	ev := recvEvent(t, events)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, order.ID(1), ev.OrderID)

	// 第二笔意图在新连接上写出，而不是滞留在队列里
	select {
	case msg := <-good.sent:
		assert.JSONEq(t, `{"type":"insert","data":{"orderId":2,"side":0,"price":10200,"volume":10,"lifespan":1}}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("queued intent not written after reconnect")
	}
	mu.Lock()
	assert.Equal(t, 2, dials)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop on cancel")
	}
}

type scriptedConn struct {
	reads []error
}

func (c *scriptedConn) ReadMessage() ([]byte, error) {
	err := c.reads[0]
	c.reads = c.reads[1:]
	return nil, err
}

func (c *scriptedConn) WriteMessage([]byte) error { return nil }
func (c *scriptedConn) Close() error              { return nil }

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	var dials int
	dial := func(ctx context.Context) (Conn, error) {
		dials++
		switch dials {
		case 1:
			return &scriptedConn{reads: []error{errors.New("reset by peer")}}, nil
		case 2:
			return nil, errors.New("refused")
		default:
			return nil, io.EOF
		}
	}
	c := NewClient(dial, ClientOptions{ReconnectDelay: time.Millisecond})

	err := c.Run(context.Background(), make(chan Event))
	assert.NoError(t, err)
	assert.Equal(t, 3, dials)
}

func TestClient_WebSocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		book := `{"type":"book","data":{"instrument":0,"seq":1,"bidPrices":[10000,0,0,0,0],"bidVolumes":[1,0,0,0,0],"askPrices":[10200,0,0,0,0],"askVolumes":[1,0,0,0,0]}}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(book)); err != nil {
			return
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(msg)
		// 保持连接直到客户端关闭
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := NewClient(WSDialer(url, 0), ClientOptions{Limiter: NewTokenBucketLimiter(100, 10)})
	events := make(chan Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := runClient(ctx, c, events)

	ev := recvEvent(t, events)
	assert.Equal(t, EventBook, ev.Type)
	assert.Equal(t, int64(10200), ev.Book.BestAsk())

	require.NoError(t, c.CancelOrder(1))
	select {
	case msg := <-received:
		assert.JSONEq(t, `{"type":"cancel","data":{"orderId":1}}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive intent")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop on cancel")
	}
}

func TestWSDialer_RequiresURL(t *testing.T) {
	_, err := WSDialer("", 0)(context.Background())
	assert.Error(t, err)
}
