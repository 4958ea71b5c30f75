package runtimebridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/websocket"

	"github.com/hktproto/hktmcp/internal/logx"
	"github.com/hktproto/hktmcp/internal/metrics"
	"github.com/hktproto/hktmcp/internal/rpcwire"
)

// Notification is an unsolicited frame pushed by the runtime.
type Notification struct {
	Method   string          `json:"method,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
	Raw      json.RawMessage `json:"raw"`
	Received time.Time       `json:"received"`
}

// NotificationHandler receives notifications on the read loop goroutine; it
// should return quickly.
type NotificationHandler func(Notification)

// SetNotificationHandler registers h, replacing any previous handler. A nil
// handler drops notifications.
func (b *Bridge) SetNotificationHandler(h NotificationHandler) {
	b.mu.Lock()
	b.handler = h
	b.mu.Unlock()
}

func (b *Bridge) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			b.connectionLost(conn, err)
			return
		}
		b.dispatch(data)
	}
}

func (b *Bridge) dispatch(data []byte) {
	msg, err := rpcwire.Decode(data)
	if err != nil {
		metrics.RecordFrame("malformed")
		logx.Log.Warn().Err(fmt.Errorf("%w: %w", ErrDecode, err)).Int("bytes", len(data)).Msg("dropping runtime frame")
		return
	}
	switch msg.Kind {
	case rpcwire.KindResult:
		if !b.table.Resolve(msg.ID, msg.Result) {
			b.unmatched(msg)
			return
		}
	case rpcwire.KindError:
		if !b.table.Reject(msg.ID, msg.Error) {
			b.unmatched(msg)
			return
		}
	case rpcwire.KindNotification:
		b.notify(msg)
	}
	metrics.RecordFrame(msg.Kind.String())
}

func (b *Bridge) unmatched(msg rpcwire.Message) {
	metrics.RecordFrame("unmatched")
	logx.Log.Debug().Str("id", msg.ID).Str("kind", msg.Kind.String()).Msg("response for unknown or expired call")
}

func (b *Bridge) notify(msg rpcwire.Message) {
	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()
	if h == nil {
		logx.Log.Debug().Str("method", msg.Method).Msg("notification dropped, no handler")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logx.Log.Error().Interface("panic", r).Str("method", msg.Method).Msg("notification handler panicked")
		}
	}()
	h(Notification{Method: msg.Method, Params: msg.Params, Raw: msg.Raw, Received: time.Now()})
}
