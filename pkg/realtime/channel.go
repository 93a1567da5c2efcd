// Package realtime maintains the WebSocket connection that carries badge
// award and removal notifications from the server.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/NicolasHaas/badgeboard/pkg/model"
	"github.com/NicolasHaas/badgeboard/pkg/protocol"
	"github.com/NicolasHaas/badgeboard/pkg/version"
)

// Handler receives decoded events, one at a time, in wire order.
type Handler func(model.RealtimeEvent)

// Recorder receives channel telemetry. client.Metrics implements it.
type Recorder interface {
	FrameDecoded(t model.EventType)
	FrameDropped(reason string)
	ConnState(s State)
}

// Backoff configures reconnection delays: Initial, then multiplied by Factor
// after each failed attempt, capped at Max.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	Factor  float64
}

// DefaultBackoff is used when WithReconnect gets a zero Backoff.
var DefaultBackoff = Backoff{Initial: time.Second, Max: 30 * time.Second, Factor: 2}

func (b Backoff) next(cur time.Duration) time.Duration {
	n := time.Duration(math.Round(float64(cur) * b.Factor))
	if n > b.Max || n <= 0 {
		return b.Max
	}
	return n
}

// Option configures a Channel.
type Option func(*Channel)

// WithReconnect re-dials after the connection drops until Close is called.
func WithReconnect(b Backoff) Option {
	return func(c *Channel) {
		if b.Initial <= 0 {
			b.Initial = DefaultBackoff.Initial
		}
		if b.Max < b.Initial {
			b.Max = b.Initial
		}
		if b.Factor < 1 {
			b.Factor = DefaultBackoff.Factor
		}
		c.backoff = &b
	}
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) {
		c.dialer = d
	}
}

// WithRecorder attaches telemetry.
func WithRecorder(r Recorder) Option {
	return func(c *Channel) {
		c.recorder = r
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Channel) {
		c.log = l
	}
}

// Channel is one logical realtime subscription. Without WithReconnect it is
// exactly one connection; once that drops the channel is done.
type Channel struct {
	url      string
	dialer   *websocket.Dialer
	backoff  *Backoff
	recorder Recorder
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.RWMutex
	conn          *websocket.Conn
	state         State
	handler       Handler
	onStateChange func(State)
	started       bool

	closeOnce sync.Once
	done      chan struct{}
}

// Dial opens the connection eagerly. Call Start to begin receiving.
func Dial(ctx context.Context, url string, opts ...Option) (*Channel, error) {
	c := &Channel{
		url:    url,
		dialer: websocket.DefaultDialer,
		log:    slog.Default().With("component", "realtime"),
		state:  StateConnecting,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.record(StateConnecting)

	conn, err := c.dial(ctx)
	if err != nil {
		c.cancel()
		c.record(StateDisconnected)
		return nil, err
	}
	c.conn = conn
	c.setState(StateConnected)
	c.log.Info("realtime connected", "url", url)
	return c, nil
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	header.Set("X-Request-ID", uuid.NewString())
	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, &model.NetworkError{Op: "dial " + c.url, Err: err}
	}
	return conn, nil
}

// OnEvent installs the event handler. Only one handler is active; a later
// call replaces the earlier one.
func (c *Channel) OnEvent(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// OnStateChange installs a callback for connection state transitions.
func (c *Channel) OnStateChange(fn func(State)) {
	c.mu.Lock()
	c.onStateChange = fn
	c.mu.Unlock()
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Start launches the receive loop. Calling it more than once, or after
// Close, does nothing.
func (c *Channel) Start() {
	c.mu.Lock()
	if c.started || c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.started = true
	conn := c.conn
	c.mu.Unlock()

	go c.run(conn)
}

// Done returns a channel closed once the channel has terminally stopped.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close shuts the connection and stops any reconnection. It is idempotent.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.RLock()
		conn := c.conn
		started := c.started
		c.mu.RUnlock()

		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			err = conn.Close()
		}
		if !started {
			c.setState(StateDisconnected)
			close(c.done)
		}
	})
	return err
}

func (c *Channel) run(conn *websocket.Conn) {
	defer close(c.done)
	defer c.setState(StateDisconnected)

	for {
		c.receive(conn)
		if c.ctx.Err() != nil || c.backoff == nil {
			return
		}
		var ok bool
		conn, ok = c.reconnect()
		if !ok {
			return
		}
	}
}

// receive reads frames until the connection fails.
func (c *Channel) receive(conn *websocket.Conn) {
	for {
		data, size, err := readFrame(conn)
		if errors.Is(err, protocol.ErrFrameTooLarge) {
			c.log.Warn("dropping oversized realtime frame", "bytes", size)
			if c.recorder != nil {
				c.recorder.FrameDropped(dropReason(err))
			}
			continue
		}
		if err != nil {
			switch {
			case c.ctx.Err() != nil:
				c.log.Debug("realtime connection closed")
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				c.log.Info("realtime connection closed by server")
			default:
				c.log.Warn("realtime read error", "err", err)
			}
			return
		}

		ev, err := protocol.DecodeEvent(data)
		if err != nil {
			c.log.Warn("dropping malformed realtime frame", "err", err, "bytes", len(data))
			if c.recorder != nil {
				c.recorder.FrameDropped(dropReason(err))
			}
			continue
		}
		if c.recorder != nil {
			c.recorder.FrameDecoded(ev.Type())
		}

		c.mu.RLock()
		h := c.handler
		c.mu.RUnlock()
		if h != nil {
			h(ev)
		}
	}
}

// readFrame reads one message, buffering at most protocol.MaxFrameSize
// bytes. A longer message is drained and reported as ErrFrameTooLarge
// along with its full size, leaving the connection usable.
func readFrame(conn *websocket.Conn) ([]byte, int64, error) {
	_, r, err := conn.NextReader()
	if err != nil {
		return nil, 0, err
	}
	data, err := io.ReadAll(io.LimitReader(r, protocol.MaxFrameSize+1))
	if err != nil {
		return nil, 0, err
	}
	if len(data) <= protocol.MaxFrameSize {
		return data, int64(len(data)), nil
	}
	rest, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, 0, err
	}
	return nil, int64(len(data)) + rest, protocol.ErrFrameTooLarge
}

func (c *Channel) reconnect() (*websocket.Conn, bool) {
	c.setState(StateReconnecting)
	delay := c.backoff.Initial
	for attempt := 1; ; attempt++ {
		timer := time.NewTimer(delay)
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return nil, false
		case <-timer.C:
		}

		conn, err := c.dial(c.ctx)
		if err != nil {
			c.log.Warn("realtime reconnect failed", "attempt", attempt, "retry_in", c.backoff.next(delay), "err", err)
			delay = c.backoff.next(delay)
			continue
		}

		c.mu.Lock()
		if c.ctx.Err() != nil {
			c.mu.Unlock()
			_ = conn.Close()
			return nil, false
		}
		c.conn = conn
		c.mu.Unlock()

		c.log.Info("realtime reconnected", "attempt", attempt)
		c.setState(StateConnected)
		return conn, true
	}
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	fn := c.onStateChange
	c.mu.Unlock()

	c.record(s)
	if fn != nil {
		fn(s)
	}
}

func (c *Channel) record(s State) {
	if c.recorder != nil {
		c.recorder.ConnState(s)
	}
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, protocol.ErrMissingField):
		return "missing_field"
	case errors.Is(err, protocol.ErrFrameTooLarge):
		return "too_large"
	default:
		return "malformed"
	}
}

// String renders a backoff for logs.
func (b Backoff) String() string {
	return fmt.Sprintf("initial=%s max=%s factor=%.1f", b.Initial, b.Max, b.Factor)
}
