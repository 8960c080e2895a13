package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn 一条双向消息通道，每条消息是一个完整的 JSON 信封。
// ReadMessage 只由读循环调用，WriteMessage 只由写循环调用。
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(msg []byte) error
	Close() error
}

// Dialer 建立连接。
type Dialer func(ctx context.Context) (Conn, error)

// lineConn 按行读写，用于 stdin/stdout 或回放文件。
type lineConn struct {
	scanner *bufio.Scanner
	w       io.Writer
	closer  io.Closer
	mu      sync.Mutex
}

// NewLineConn 在 r/w 上构造按行分隔的连接，closer 可为 nil。
func NewLineConn(r io.Reader, w io.Writer, closer io.Closer) Conn {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	return &lineConn{scanner: s, w: w, closer: closer}
}

func (c *lineConn) ReadMessage() ([]byte, error) {
	for c.scanner.Scan() {
		line := c.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		out := make([]byte, len(line))
		copy(out, line)
		return out, nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (c *lineConn) WriteMessage(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(msg); err != nil {
		return err
	}
	_, err := c.w.Write([]byte{'\n'})
	return err
}

func (c *lineConn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// LineDialer 返回只能拨号一次的行连接；再次拨号返回 io.EOF，使客户端退出。
func LineDialer(r io.Reader, w io.Writer) Dialer {
	var once sync.Once
	return func(ctx context.Context) (Conn, error) {
		var c Conn
		once.Do(func() { c = NewLineConn(r, w, nil) })
		if c == nil {
			return nil, io.EOF
		}
		return c, nil
	}
}

// wsConn 基于 gorilla/websocket 的文本消息连接。
type wsConn struct {
	conn        *websocket.Conn
	readTimeout time.Duration
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	if c.readTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	_, msg, err := c.conn.ReadMessage()
	return msg, err
}

func (c *wsConn) WriteMessage(msg []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *wsConn) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

// WSDialer 连接 websocket 地址，readTimeout 为 0 时不设读超时。
func WSDialer(url string, readTimeout time.Duration) Dialer {
	return func(ctx context.Context) (Conn, error) {
		if url == "" {
			return nil, fmt.Errorf("feed url required")
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", url, err)
		}
		return &wsConn{conn: conn, readTimeout: readTimeout}, nil
	}
}
