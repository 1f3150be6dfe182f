// Package resilience guards calls to flaky collaborators. The task
// orchestrator wraps model invocations in a circuit breaker so a down
// model service fails fast instead of burning every task's retry
// budget against a dead endpoint.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker rejects a call outright.
var ErrOpen = errors.New("circuit breaker is open")

// State of the breaker.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures breaker behavior.
type Settings struct {
	// FailureThreshold is the consecutive-failure count that trips
	// the breaker.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// OnStateChange, if set, is called on every transition.
	OnStateChange func(from, to State)
}

// Breaker implements a consecutive-failure circuit breaker.
type Breaker struct {
	settings Settings

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

// NewBreaker creates a breaker with the given settings.
func NewBreaker(settings Settings) *Breaker {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	return &Breaker{settings: settings}
}

// State returns the current state, accounting for cooldown expiry.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Do runs fn if the breaker allows it. A rejected call returns
// ErrOpen without invoking fn.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.current() == StateOpen {
		b.mu.Unlock()
		return ErrOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.settings.FailureThreshold {
			b.transition(StateOpen)
			b.openedAt = time.Now()
		}
		return err
	}

	b.failures = 0
	if b.state != StateClosed {
		b.transition(StateClosed)
	}
	return nil
}

// current must be called with the lock held.
func (b *Breaker) current() State {
	if b.state == StateOpen && time.Since(b.openedAt) >= b.settings.Cooldown {
		b.transition(StateHalfOpen)
	}
	return b.state
}

// transition must be called with the lock held.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(from, to)
	}
}
