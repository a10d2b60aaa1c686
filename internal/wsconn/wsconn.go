// Package wsconn provides a WebSocket client with reconnection.
package wsconn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/coder/websocket"

	"github.com/fd1az/aptos-dex/internal/apperror"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// MessageHandler receives every inbound text or binary message.
type MessageHandler func(ctx context.Context, msg []byte)

// StateHandler observes state transitions. err is set when a transition was
// caused by a failure.
type StateHandler func(state State, err error)

// Config holds WebSocket client configuration.
type Config struct {
	URL              string
	Name             string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
	MaxReconnects    uint // 0 = infinite
	AutoReconnect    bool
	PingInterval     time.Duration // 0 disables keepalive pings
	PongTimeout      time.Duration
	MaxMessageSize   int64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:              url,
		Name:             name,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		InitialBackoff:   1 * time.Second,
		MaxBackoff:       30 * time.Second,
		AutoReconnect:    true,
		PingInterval:     30 * time.Second,
		PongTimeout:      10 * time.Second,
		MaxMessageSize:   1 << 20,
	}
}

// Client is a WebSocket client safe for concurrent use.
type Client struct {
	cfg Config

	mu    sync.RWMutex
	conn  *websocket.Conn
	state State

	handlersMu sync.RWMutex
	onMessage  MessageHandler
	onState    StateHandler

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates a new WebSocket client.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(fmt.Sprintf("websocket url %q", cfg.URL)))
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 1 << 20
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		cfg:    cfg,
		state:  StateDisconnected,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// OnMessage sets the inbound message handler.
func (c *Client) OnMessage(h MessageHandler) {
	c.handlersMu.Lock()
	c.onMessage = h
	c.handlersMu.Unlock()
}

// OnStateChange sets the state transition handler.
func (c *Client) OnStateChange(h StateHandler) {
	c.handlersMu.Lock()
	c.onState = h
	c.handlersMu.Unlock()
}

// Connect dials the server once.
func (c *Client) Connect(ctx context.Context) error {
	if c.ctx.Err() != nil {
		return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.cfg.Name))
	}

	c.setState(StateConnecting, nil)

	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}

	conn, _, err := websocket.Dial(dialCtx, c.cfg.URL, nil)
	if err != nil {
		wrapped := apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithContext(c.cfg.Name),
			apperror.WithCause(err),
			apperror.WithKind(apperror.KindNetworkFailure))
		c.setState(StateDisconnected, wrapped)
		return wrapped
	}
	conn.SetReadLimit(c.cfg.MaxMessageSize)

	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		conn.CloseNow()
		return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.cfg.Name))
	}
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected, nil)

	go c.readLoop(conn)
	if c.cfg.PingInterval > 0 {
		go c.pingLoop(conn)
	}
	return nil
}

// ConnectWithRetry dials with exponential backoff until it succeeds, the
// reconnect budget is spent or ctx ends.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff

	opts := []backoff.RetryOption{backoff.WithBackOff(b)}
	if c.cfg.MaxReconnects > 0 {
		opts = append(opts, backoff.WithMaxTries(c.cfg.MaxReconnects))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if c.ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.cfg.Name)))
		}
		return struct{}{}, c.Connect(ctx)
	}, opts...)
	return err
}

// Send writes a text message.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithContext(c.cfg.Name+": not connected"),
			apperror.WithKind(apperror.KindNetworkFailure))
	}

	if c.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.WriteTimeout)
		defer cancel()
	}

	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithContext(c.cfg.Name),
			apperror.WithCause(err),
			apperror.WithKind(apperror.KindNetworkFailure))
	}
	return nil
}

// SendJSON marshals v and sends it as a text message.
func (c *Client) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wsconn: marshal: %w", err)
	}
	return c.Send(ctx, data)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the client holds a live connection.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close gracefully closes the connection and stops reconnecting. Idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()

		if conn != nil {
			conn.Close(websocket.StatusNormalClosure, "client closing")
		}
		c.setState(StateClosed, nil)
	})
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(c.ctx)
		if err != nil {
			c.handleDisconnect(conn, err)
			return
		}

		c.handlersMu.RLock()
		h := c.onMessage
		c.handlersMu.RUnlock()
		if h != nil {
			h(c.ctx, data)
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			current := c.conn == conn
			c.mu.RUnlock()
			if !current {
				return
			}

			ctx, cancel := context.WithTimeout(c.ctx, c.cfg.PongTimeout)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				c.handleDisconnect(conn, err)
				return
			}
		}
	}
}

// handleDisconnect tears down conn if it is still current and schedules a
// reconnect when enabled.
func (c *Client) handleDisconnect(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.mu.Unlock()

	conn.CloseNow()
	if c.ctx.Err() != nil {
		return
	}

	err := apperror.New(apperror.CodeWebSocketConnectionError,
		apperror.WithContext(c.cfg.Name),
		apperror.WithCause(cause),
		apperror.WithKind(apperror.KindNetworkFailure))

	if !c.cfg.AutoReconnect {
		c.setState(StateDisconnected, err)
		return
	}

	c.setState(StateReconnecting, err)
	go func() {
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(c.cfg.InitialBackoff):
		}
		if err := c.ConnectWithRetry(c.ctx); err != nil && c.ctx.Err() == nil {
			c.setState(StateDisconnected, err)
		}
	}()
}

func (c *Client) setState(state State, err error) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.mu.Unlock()

	c.handlersMu.RLock()
	h := c.onState
	c.handlersMu.RUnlock()
	if h != nil {
		h(state, err)
	}
}
