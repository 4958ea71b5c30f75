package runtimebridge

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTableResolveOnce(t *testing.T) {
	tab := NewTable()
	p, err := tab.Register("t1", "get_game_state", time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !tab.Resolve("t1", json.RawMessage(`{"ok":true}`)) {
		t.Fatalf("first resolve should win")
	}
	if tab.Resolve("t1", json.RawMessage(`2`)) || tab.Reject("t1", errors.New("x")) || tab.Expire("t1") {
		t.Fatalf("later completions must be no-ops")
	}
	out := <-p.Done()
	if out.Err != nil || string(out.Result) != `{"ok":true}` {
		t.Fatalf("unexpected outcome %+v", out)
	}
	select {
	case extra := <-p.Done():
		t.Fatalf("second outcome delivered: %+v", extra)
	default:
	}
	if tab.Len() != 0 {
		t.Fatalf("table not empty")
	}
}

func TestTableExpire(t *testing.T) {
	tab := NewTable()
	p, _ := tab.Register("t1", "ping", time.Now())
	if !tab.Expire("t1") {
		t.Fatalf("expire should remove entry")
	}
	out := <-p.Done()
	if !errors.Is(out.Err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", out.Err)
	}
	var ce *CallError
	if !errors.As(out.Err, &ce) || ce.Method != "ping" {
		t.Fatalf("expected CallError for ping, got %v", out.Err)
	}
}

func TestTableDuplicateToken(t *testing.T) {
	tab := NewTable()
	if _, err := tab.Register("dup", "a", time.Now()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := tab.Register("dup", "b", time.Now()); !errors.Is(err, ErrDuplicateToken) {
		t.Fatalf("expected ErrDuplicateToken, got %v", err)
	}
	if tab.Len() != 1 {
		t.Fatalf("duplicate must not replace entry")
	}
}

func TestTableUnknownToken(t *testing.T) {
	tab := NewTable()
	if tab.Resolve("missing", nil) || tab.Reject("missing", errors.New("x")) || tab.Expire("missing") {
		t.Fatalf("unknown token must be a no-op")
	}
}

func TestTableExpireRacesResolve(t *testing.T) {
	for i := 0; i < 200; i++ {
		tab := NewTable()
		p, _ := tab.Register("t", "m", time.Now())
		var wins atomic.Int32
		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			if tab.Resolve("t", json.RawMessage(`1`)) {
				wins.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if tab.Expire("t") {
				wins.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if tab.Reject("t", errors.New("boom")) {
				wins.Add(1)
			}
		}()
		wg.Wait()
		if wins.Load() != 1 {
			t.Fatalf("iteration %d: %d winners", i, wins.Load())
		}
		<-p.Done()
		if tab.Len() != 0 {
			t.Fatalf("entry leaked")
		}
	}
}

func TestTableSnapshot(t *testing.T) {
	tab := NewTable()
	_, _ = tab.Register("old", "get_game_state", time.Now().Add(time.Minute))
	time.Sleep(5 * time.Millisecond)
	_, _ = tab.Register("new", "execute_command", time.Now().Add(time.Minute))
	snap := tab.Snapshot()
	if len(snap) != 2 || snap[0].Token != "old" || snap[1].Method != "execute_command" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
