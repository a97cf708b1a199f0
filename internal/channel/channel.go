// Package channel maintains the duplex event connection a surface holds to
// the broadcast endpoint. The connection is perpetual: every close, clean or
// not, schedules exactly one reconnect after a fixed delay, for the lifetime
// of the surface.
package channel

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/event"
)

const (
	DefaultReconnectDelay = 3 * time.Second
	writeTimeout          = 10 * time.Second
)

type Config struct {
	URL            string
	ReconnectDelay time.Duration
	// OnEvent receives decoded events in arrival order. Invocations never
	// overlap; each runs to completion before the next message is read.
	OnEvent func(event.Event)
	// OnOpen fires after every successful (re)connect, before any event is
	// delivered. Surfaces refetch their snapshot here.
	OnOpen func()
	Logger *zap.Logger
}

type Channel struct {
	cfg Config

	mu   sync.Mutex
	conn *websocket.Conn

	// writeMu serializes writers on the live conn. Held only around the
	// write itself, never together with mu, so Close and the run loop are
	// never stuck behind a stalled peer.
	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

// Open starts the connect loop and returns immediately. Close tears the
// channel down and cancels any pending reconnect.
func Open(cfg Config) (*Channel, error) {
	if cfg.URL == "" {
		return nil, errors.New("channel: URL is required")
	}
	if cfg.OnEvent == nil {
		return nil, errors.New("channel: OnEvent is required")
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	c := &Channel{cfg: cfg, done: make(chan struct{})}
	go c.run()
	return c, nil
}

// Send transmits a payload if the connection is live. While disconnected it
// degrades to a logged no-op; it never fails the surface.
func (c *Channel) Send(payload any) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.cfg.Logger.Warn("channel not open, dropping send")
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(payload); err != nil {
		c.cfg.Logger.Warn("channel send failed", zap.Error(err))
	}
}

func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.mu.Unlock()
	})
}

func (c *Channel) run() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.cfg.URL, nil)
		if err != nil {
			c.cfg.Logger.Warn("connect failed", zap.String("url", c.cfg.URL), zap.Error(err))
			if !c.waitReconnect() {
				return
			}
			continue
		}

		c.setConn(conn)
		// Close may have raced the dial. Re-checking after setConn covers
		// both orders: either Close already closed conn, or we do it here.
		select {
		case <-c.done:
			_ = conn.Close()
			return
		default:
		}

		c.cfg.Logger.Info("channel connected", zap.String("url", c.cfg.URL))
		if c.cfg.OnOpen != nil {
			c.cfg.OnOpen()
		}

		c.readLoop(conn)
		c.setConn(nil)
		_ = conn.Close()

		select {
		case <-c.done:
			return
		default:
			c.cfg.Logger.Warn("channel disconnected, reconnecting")
		}
		if !c.waitReconnect() {
			return
		}
	}
}

// readLoop delivers messages until the connection dies. A message that fails
// to decode is dropped; it never closes the connection.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		ev, err := event.Decode(raw)
		if err != nil {
			c.cfg.Logger.Warn("drop undecodable message", zap.Error(err))
			continue
		}
		c.cfg.OnEvent(ev)
	}
}

func (c *Channel) waitReconnect() bool {
	select {
	case <-time.After(c.cfg.ReconnectDelay):
		return true
	case <-c.done:
		return false
	}
}

func (c *Channel) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}
