package runtimebridge

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hktproto/hktmcp/internal/logx"
	"github.com/hktproto/hktmcp/internal/metrics"
)

// Outcome is the single completion delivered to a pending call.
type Outcome struct {
	Result json.RawMessage
	Err    error
}

// PendingCall is one outstanding request.
type PendingCall struct {
	Token    string
	Method   string
	Deadline time.Time
	created  time.Time
	done     chan Outcome
}

// Done delivers exactly one Outcome.
func (p *PendingCall) Done() <-chan Outcome { return p.done }

// PendingInfo is a read-only view of a pending call.
type PendingInfo struct {
	Token    string        `json:"token"`
	Method   string        `json:"method"`
	Deadline time.Time     `json:"deadline"`
	Age      time.Duration `json:"age"`
}

// Table maps correlation tokens to pending calls. An entry is removed before
// its handle is completed, under the same lock, so the first of
// Resolve/Reject/Expire wins and the rest are no-ops.
type Table struct {
	mu      sync.Mutex
	entries map[string]*PendingCall
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: map[string]*PendingCall{}}
}

// Register inserts a pending call for token.
func (t *Table) Register(token, method string, deadline time.Time) (*PendingCall, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[token]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateToken, token)
	}
	p := &PendingCall{Token: token, Method: method, Deadline: deadline, created: time.Now(), done: make(chan Outcome, 1)}
	t.entries[token] = p
	metrics.SetPendingCalls(len(t.entries))
	return p, nil
}

// Resolve completes token with a result.
func (t *Table) Resolve(token string, result json.RawMessage) bool {
	return t.complete(token, Outcome{Result: result})
}

// Reject completes token with err.
func (t *Table) Reject(token string, err error) bool {
	return t.complete(token, Outcome{Err: err})
}

// Expire completes token with a timeout failure.
func (t *Table) Expire(token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.take(token)
	if !ok {
		return false
	}
	p.done <- Outcome{Err: &CallError{Kind: ErrTimeout, Method: p.Method}}
	return true
}

// discard drops token without completing it; only its issuer may call this.
func (t *Table) discard(token string) {
	t.mu.Lock()
	t.take(token)
	t.mu.Unlock()
}

func (t *Table) complete(token string, out Outcome) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.take(token)
	if !ok {
		logx.Log.Debug().Str("token", token).Msg("no pending call for token")
		return false
	}
	p.done <- out
	return true
}

// take must be called with t.mu held.
func (t *Table) take(token string) (*PendingCall, bool) {
	p, ok := t.entries[token]
	if !ok {
		return nil, false
	}
	delete(t.entries, token)
	metrics.SetPendingCalls(len(t.entries))
	return p, true
}

// Len returns the number of pending calls.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Snapshot lists pending calls, oldest first.
func (t *Table) Snapshot() []PendingInfo {
	now := time.Now()
	t.mu.Lock()
	out := make([]PendingInfo, 0, len(t.entries))
	for _, p := range t.entries {
		out = append(out, PendingInfo{Token: p.Token, Method: p.Method, Deadline: p.Deadline, Age: now.Sub(p.created)})
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Age > out[j].Age })
	return out
}
