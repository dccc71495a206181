// Package ledger owns the websocket session to one ledger node and the request/response exchange over it.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"xrpl-trustcheck/internal/apperr"
)

var (
	// ErrNotOpen is returned by Request before Open or after Close.
	ErrNotOpen = errors.New("session not open")
	// ErrAlreadyOpen is returned by a second Open on a live session.
	ErrAlreadyOpen = errors.New("session already open")
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultReadLimit        = 4 << 20
)

// Client is a single websocket session to a ledger node.
// Requests are serialized: at most one is in flight at any time.
type Client struct {
	url              string
	log              zerolog.Logger
	handshakeTimeout time.Duration
	requestTimeout   time.Duration
	pingInterval     time.Duration

	reqMu  sync.Mutex // serializes Request
	nextID uint64

	mu         sync.Mutex // guards conn and pingCancel
	conn       *websocket.Conn
	pingCancel context.CancelFunc
}

// Option configures Client construction parameters.
type Option func(*Client)

// WithHandshakeTimeout bounds the websocket dial.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.handshakeTimeout = d
		}
	}
}

// WithRequestTimeout bounds every Request. Zero leaves requests unbounded.
// A request that times out drops the session; later requests fail with ErrNotOpen.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.requestTimeout = d
		}
	}
}

// WithPingInterval enables keepalive pings. Zero disables them.
func WithPingInterval(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.pingInterval = d
		}
	}
}

// NewClient prepares a session for url. Nothing is dialed until Open.
func NewClient(url string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		url:              url,
		log:              log,
		handshakeTimeout: defaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client dials.
func (c *Client) URL() string { return c.url }

// Open dials the endpoint and starts the keepalive loop.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return apperr.E("ledger.open", apperr.KindConnection, ErrAlreadyOpen)
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, c.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return apperr.E("ledger.open", apperr.KindConnection, fmt.Errorf("dial %s: %w", c.url, err))
	}
	conn.SetReadLimit(defaultReadLimit)
	c.conn = conn

	if c.pingInterval > 0 {
		pingCtx, cancel := context.WithCancel(context.Background())
		c.pingCancel = cancel
		go c.keepalive(pingCtx, conn)
	}
	c.log.Info().Str("url", c.url).Msg("connected to ledger")
	return nil
}

func (c *Client) keepalive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				c.log.Warn().Err(err).Msg("ledger ping failed")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Request sends req and waits for the reply carrying the same id.
// Unrelated messages (stream events, stale replies) are skipped.
func (c *Client) Request(ctx context.Context, req Request) (*Response, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil, apperr.E("ledger.request", apperr.KindTransport, ErrNotOpen)
	}

	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, apperr.E("ledger.request", apperr.KindTransport, err)
	}

	c.nextID++
	id := c.nextID

	// A canceled context interrupts a blocked read; the session is unusable afterwards.
	_ = conn.SetReadDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
	}
	if err := conn.WriteJSON(req.payload(id)); err != nil {
		c.drop(conn)
		return nil, apperr.E("ledger.request", apperr.KindTransport, fmt.Errorf("write %s: %w", req.Command, err))
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			c.drop(conn)
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return nil, apperr.E("ledger.request", apperr.KindTransport, fmt.Errorf("read %s: %w", req.Command, err))
		}

		var resp Response
		if err := json.Unmarshal(message, &resp); err != nil {
			c.log.Warn().Err(err).Msg("failed to decode ledger message")
			continue
		}
		if resp.Type != "" && resp.Type != "response" {
			continue
		}
		if resp.ID != id {
			c.log.Debug().Uint64("want", id).Uint64("got", resp.ID).Msg("skipping unrelated ledger reply")
			continue
		}
		return &resp, nil
	}
}

// drop discards a broken connection so later requests fail fast.
func (c *Client) drop(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	c.release()
}

// Close releases the session. It is a no-op when the session was never opened or is already gone.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := c.release()
	c.log.Info().Str("url", c.url).Msg("connection closed")
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// release must be called with mu held.
func (c *Client) release() error {
	if c.pingCancel != nil {
		c.pingCancel()
		c.pingCancel = nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
