package reconnect

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Backoff yields the delays between successive reconnect attempts. The first
// delay is base, each consecutive failure doubles it, and it never exceeds
// ceiling. Reset returns the schedule to base after a successful connect.
type Backoff struct {
	mu       sync.Mutex
	policy   *backoff.ExponentialBackOff
	attempts int
}

// New returns a Backoff starting at base and capped at ceiling. A ceiling
// below base is raised to base.
func New(base, ceiling time.Duration) *Backoff {
	if base <= 0 {
		base = time.Second
	}
	if ceiling < base {
		ceiling = base
	}
	p := backoff.NewExponentialBackOff()
	p.InitialInterval = base
	p.MaxInterval = ceiling
	p.Multiplier = 2
	p.RandomizationFactor = 0
	p.MaxElapsedTime = 0
	p.Reset()
	return &Backoff{policy: p}
}

// Next returns the delay before the next attempt and advances the schedule.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts++
	d := b.policy.NextBackOff()
	if d == backoff.Stop {
		return b.policy.MaxInterval
	}
	return d
}

// Reset rewinds the schedule to the base delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	b.attempts = 0
	b.policy.Reset()
	b.mu.Unlock()
}

// Attempts reports how many delays were handed out since the last Reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}
