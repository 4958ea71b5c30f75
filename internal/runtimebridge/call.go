package runtimebridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"

	"github.com/hktproto/hktmcp/internal/metrics"
	"github.com/hktproto/hktmcp/internal/rpcwire"
)

// Call sends method with params and waits for its response. A timeout of zero
// or less uses the configured default. Exactly one of a result, a *CallError
// or the context's error is returned.
func (b *Bridge) Call(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = b.opts.RPCTimeout
	}
	start := time.Now()
	res, err := b.call(ctx, method, params, timeout)
	metrics.RecordRuntimeCall(method, outcomeLabel(err), time.Since(start))
	return res, err
}

func (b *Bridge) call(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn := b.current()
	if conn == nil {
		if err := b.Connect(ctx); err != nil {
			return nil, &CallError{Kind: ErrNotConnected, Method: method, Err: err}
		}
		if conn = b.current(); conn == nil {
			return nil, &CallError{Kind: ErrNotConnected, Method: method}
		}
	}

	token := b.newToken()
	data, err := json.Marshal(rpcwire.NewRequest(token, method, params))
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", method, err)
	}
	deadline := time.Now().Add(timeout)
	p, err := b.table.Register(token, method, deadline)
	if err != nil {
		return nil, &CallError{Kind: ErrDuplicateToken, Method: method, Err: err}
	}
	if err := b.send(ctx, conn, data, deadline); err != nil {
		b.table.discard(token)
		switch {
		case errors.Is(err, errSendDeadline):
			return nil, &CallError{Kind: ErrTimeout, Method: method, Err: err}
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			return nil, &CallError{Kind: ErrNotConnected, Method: method, Err: err}
		}
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case out := <-p.Done():
		return finish(method, out)
	case <-timer.C:
		b.table.Expire(token)
	case <-ctx.Done():
		b.table.Reject(token, ctx.Err())
	}
	// A response may have won the race with expiry; either way exactly one
	// outcome is buffered.
	return finish(method, <-p.Done())
}

// send writes one frame through the single send path. The write runs on a
// context detached from the caller, because coder/websocket closes the
// connection when a write context ends; it is bounded by writeTimeout only.
// The caller stops waiting at its own deadline or cancellation and the write
// finishes in the background.
func (b *Bridge) send(ctx context.Context, conn *websocket.Conn, data []byte, deadline time.Time) error {
	wait := time.NewTimer(time.Until(deadline))
	defer wait.Stop()
	select {
	case b.writeSem <- struct{}{}:
	case <-wait.C:
		return errSendDeadline
	case <-ctx.Done():
		return ctx.Err()
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-b.writeSem }()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		done <- conn.Write(wctx, websocket.MessageText, data)
	}()
	select {
	case err := <-done:
		return err
	case <-wait.C:
		return errSendDeadline
	case <-ctx.Done():
		return ctx.Err()
	}
}

func finish(method string, out Outcome) (json.RawMessage, error) {
	if out.Err == nil {
		return out.Result, nil
	}
	var ce *CallError
	switch {
	case errors.As(out.Err, &ce):
		return nil, ce
	case errors.Is(out.Err, context.Canceled), errors.Is(out.Err, context.DeadlineExceeded):
		return nil, out.Err
	default:
		return nil, &CallError{Kind: ErrRemote, Method: method, Message: out.Err.Error(), Err: out.Err}
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, ErrRemote):
		return metrics.OutcomeRemoteError
	case errors.Is(err, ErrNotConnected):
		return metrics.OutcomeNotConnected
	default:
		return metrics.OutcomeCanceled
	}
}
