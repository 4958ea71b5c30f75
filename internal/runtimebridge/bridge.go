// Package runtimebridge is a JSON-RPC client over a persistent WebSocket to the
// bridge subsystem running inside the game. Many calls share one connection;
// responses are matched to callers by correlation token, unsolicited frames go
// to a notification handler, and a lost connection is re-dialed with
// exponential backoff.
package runtimebridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/hktproto/hktmcp/internal/config"
	"github.com/hktproto/hktmcp/internal/logx"
	"github.com/hktproto/hktmcp/internal/metrics"
	"github.com/hktproto/hktmcp/internal/reconnect"
)

// State is the connection lifecycle state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	ClosingIntentionally
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case ClosingIntentionally:
		return "closing"
	default:
		return "unknown"
	}
}

const (
	maxFrameBytes = 16 << 20
	writeTimeout  = 10 * time.Second
)

var (
	// errSuperseded is returned by a dial that finished after Disconnect.
	errSuperseded = errors.New("connection closed while dialing")
	// errSendDeadline is returned when a call's deadline passes before its
	// request is written.
	errSendDeadline = errors.New("deadline passed before request was written")
)

// Options configures a Bridge.
type Options struct {
	URL               string
	Reconnect         bool
	ReconnectDelay    time.Duration
	ReconnectMaxDelay time.Duration
	RPCTimeout        time.Duration
	ConnectTimeout    time.Duration
}

// OptionsFromConfig maps the runtime section of the bridge config.
func OptionsFromConfig(c config.BridgeConfig) Options {
	return Options{
		URL:               c.WebSocketURL(),
		Reconnect:         c.Reconnect,
		ReconnectDelay:    c.ReconnectDelay,
		ReconnectMaxDelay: c.ReconnectMaxDelay,
		RPCTimeout:        c.RPCTimeout,
		ConnectTimeout:    c.ConnectTimeout,
	}
}

func (o *Options) setDefaults() {
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = 5 * time.Second
	}
	if o.ReconnectMaxDelay <= 0 {
		o.ReconnectMaxDelay = 60 * time.Second
	}
	if o.RPCTimeout <= 0 {
		o.RPCTimeout = 30 * time.Second
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 10 * time.Second
	}
}

// Bridge owns the runtime connection, the correlation table and the read loop.
type Bridge struct {
	opts     Options
	table    *Table
	backoff  *reconnect.Backoff
	newToken func() string

	// dialMu serializes connection attempts.
	dialMu sync.Mutex
	// writeSem is the single send path; the read loop never takes it. A
	// channel lets waiting callers give up at their deadline.
	writeSem chan struct{}

	mu             sync.Mutex
	state          State
	conn           *websocket.Conn
	stopRead       context.CancelFunc
	readDone       chan struct{}
	autoReconnect  bool
	timer          *time.Timer
	nextAttempt    time.Time
	generation     uint64
	handler        NotificationHandler
	connectedSince time.Time
	lastErr        error
}

// New returns a disconnected Bridge.
func New(opts Options) *Bridge {
	opts.setDefaults()
	return &Bridge{
		opts:          opts,
		table:         NewTable(),
		backoff:       reconnect.New(opts.ReconnectDelay, opts.ReconnectMaxDelay),
		newToken:      uuid.NewString,
		writeSem:      make(chan struct{}, 1),
		autoReconnect: opts.Reconnect,
	}
}

// URL returns the runtime endpoint.
func (b *Bridge) URL() string { return b.opts.URL }

// Pending exposes the correlation table for inspection.
func (b *Bridge) Pending() *Table { return b.table }

// IsConnected reports whether a live connection exists.
func (b *Bridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == Connected
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Connect dials the runtime and starts the read loop. It is a no-op when
// already connected. A failed attempt schedules a background retry when
// automatic reconnection is enabled.
func (b *Bridge) Connect(ctx context.Context) error {
	b.dialMu.Lock()
	defer b.dialMu.Unlock()
	return b.connect(ctx, false)
}

func (b *Bridge) connect(ctx context.Context, auto bool) error {
	b.mu.Lock()
	if b.state == Connected {
		b.mu.Unlock()
		return nil
	}
	if auto && !b.autoReconnect {
		b.mu.Unlock()
		return errSuperseded
	}
	gen := b.generation
	b.state = Connecting
	b.mu.Unlock()

	dctx, cancel := context.WithTimeout(ctx, b.opts.ConnectTimeout)
	conn, _, err := websocket.Dial(dctx, b.opts.URL, nil)
	cancel()

	b.mu.Lock()
	if err != nil {
		b.state = Disconnected
		b.lastErr = err
		b.mu.Unlock()
		logx.Log.Error().Err(err).Str("url", b.opts.URL).Msg("runtime connect failed")
		b.scheduleReconnect()
		return err
	}
	if gen != b.generation {
		b.state = Disconnected
		b.mu.Unlock()
		_ = conn.CloseNow()
		return errSuperseded
	}
	conn.SetReadLimit(maxFrameBytes)
	readCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.conn = conn
	b.stopRead = stop
	b.readDone = done
	b.state = Connected
	b.connectedSince = time.Now()
	b.lastErr = nil
	b.backoff.Reset()
	b.mu.Unlock()

	metrics.SetConnected(true)
	logx.Log.Info().Str("url", b.opts.URL).Msg("connected to runtime")
	go b.readLoop(readCtx, conn, done)
	return nil
}

// Disconnect closes the connection, cancels any scheduled reconnect and turns
// automatic reconnection off for the rest of the bridge's life. Pending calls
// are left to time out. An explicit Connect or Call may still reconnect.
func (b *Bridge) Disconnect(ctx context.Context) error {
	b.mu.Lock()
	b.autoReconnect = false
	b.generation++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	conn, stop, done := b.conn, b.stopRead, b.readDone
	b.conn, b.stopRead, b.readDone = nil, nil, nil
	if conn == nil {
		b.state = Disconnected
		b.mu.Unlock()
		return nil
	}
	b.state = ClosingIntentionally
	b.mu.Unlock()

	err := conn.Close(websocket.StatusNormalClosure, "client disconnect")
	stop()
	select {
	case <-done:
	case <-ctx.Done():
		_ = conn.CloseNow()
	}

	b.mu.Lock()
	if b.state == ClosingIntentionally {
		b.state = Disconnected
	}
	b.mu.Unlock()
	metrics.SetConnected(false)
	logx.Log.Info().Str("url", b.opts.URL).Msg("disconnected from runtime")
	if err != nil {
		logx.Log.Debug().Err(err).Msg("runtime close handshake")
	}
	return nil
}

// connectionLost handles the end of a read loop. Loops of connections that
// were already replaced or closed on purpose are ignored, so each live
// connection yields at most one reconnect.
func (b *Bridge) connectionLost(conn *websocket.Conn, err error) {
	b.mu.Lock()
	if b.conn != conn {
		b.mu.Unlock()
		return
	}
	b.conn, b.stopRead, b.readDone = nil, nil, nil
	b.state = Disconnected
	b.lastErr = err
	b.mu.Unlock()

	_ = conn.CloseNow()
	metrics.SetConnected(false)
	logx.Log.Warn().Err(err).Str("url", b.opts.URL).Msg("runtime connection lost")
	b.scheduleReconnect()
}

func (b *Bridge) scheduleReconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.autoReconnect || b.timer != nil || b.state == Connected {
		return
	}
	d := b.backoff.Next()
	b.nextAttempt = time.Now().Add(d)
	b.timer = time.AfterFunc(d, b.reconnectAttempt)
	logx.Log.Info().Dur("backoff", d).Int("attempt", b.backoff.Attempts()).Msg("runtime reconnect scheduled")
}

func (b *Bridge) reconnectAttempt() {
	b.mu.Lock()
	b.timer = nil
	enabled := b.autoReconnect
	b.mu.Unlock()
	if !enabled {
		return
	}
	b.dialMu.Lock()
	err := b.connect(context.Background(), true)
	b.dialMu.Unlock()
	if errors.Is(err, errSuperseded) {
		return
	}
	metrics.RecordReconnect(err == nil)
}

func (b *Bridge) current() *websocket.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn
}

// Status is a point-in-time summary of the bridge.
type Status struct {
	URL               string     `json:"url"`
	State             string     `json:"state"`
	Pending           int        `json:"pending_calls"`
	AutoReconnect     bool       `json:"auto_reconnect"`
	ReconnectAttempts int        `json:"reconnect_attempts"`
	NextReconnect     *time.Time `json:"next_reconnect,omitempty"`
	ConnectedSince    *time.Time `json:"connected_since,omitempty"`
	LastError         string     `json:"last_error,omitempty"`
}

// Status reports the current connection state.
func (b *Bridge) Status() Status {
	b.mu.Lock()
	s := Status{
		URL:               b.opts.URL,
		State:             b.state.String(),
		AutoReconnect:     b.autoReconnect,
		ReconnectAttempts: b.backoff.Attempts(),
	}
	if b.timer != nil {
		t := b.nextAttempt
		s.NextReconnect = &t
	}
	if b.state == Connected {
		t := b.connectedSince
		s.ConnectedSince = &t
	}
	if b.lastErr != nil {
		s.LastError = b.lastErr.Error()
	}
	b.mu.Unlock()
	s.Pending = b.table.Len()
	return s
}
