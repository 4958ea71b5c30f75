package reconnect

import (
	"testing"
	"time"
)

func TestBackoffSequence(t *testing.T) {
	b := New(5*time.Second, 60*time.Second)
	want := []time.Duration{
		5 * time.Second, 10 * time.Second, 20 * time.Second,
		40 * time.Second, 60 * time.Second, 60 * time.Second, 60 * time.Second,
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Fatalf("attempt %d: got %s want %s", i, got, w)
		}
	}
	if b.Attempts() != len(want) {
		t.Fatalf("attempts = %d", b.Attempts())
	}
}

func TestBackoffReset(t *testing.T) {
	b := New(5*time.Second, 60*time.Second)
	b.Next()
	b.Next()
	b.Next()
	b.Reset()
	if got := b.Next(); got != 5*time.Second {
		t.Fatalf("after reset got %s", got)
	}
	if b.Attempts() != 1 {
		t.Fatalf("attempts = %d", b.Attempts())
	}
}

func TestBackoffCeilingBelowBase(t *testing.T) {
	b := New(2*time.Second, time.Second)
	for i := 0; i < 3; i++ {
		if got := b.Next(); got != 2*time.Second {
			t.Fatalf("attempt %d: got %s", i, got)
		}
	}
}
