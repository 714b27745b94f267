// Package breaker implements the circuit breaker guarding the engine's
// non-deterministic dependencies (the AI call, and nothing else in-process).
//
// The breaker has three states:
//   - Closed: primary calls pass through
//   - Open: primary is skipped, the fallback runs immediately
//   - HalfOpen: one trial primary call is allowed
//
// Open transitions to HalfOpen lazily, on the next call after ResetTimeout
// has elapsed since the last failure. There is no background timer.
package breaker

import (
	"context"
	"sync"
	"time"
)

// State is the breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the human-readable state name
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a breaker instance
type Config struct {
	// MaxFailures is the consecutive-failure count that opens the circuit
	MaxFailures int
	// ResetTimeout is how long the circuit stays open before a trial call
	ResetTimeout time.Duration
}

// DefaultConfig returns the defaults used for the AI analyzer breaker
func DefaultConfig() Config {
	return Config{
		MaxFailures:  3,
		ResetTimeout: 30 * time.Second,
	}
}

// Breaker is one guarded operation's circuit breaker. Instances are owned by
// whoever wires the guarded operation (the verifier service constructs its
// own); there are no package-level singletons. Safe for concurrent use:
// state transitions are atomic per instance.
type Breaker struct {
	name string
	cfg  Config

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
}

// New creates a breaker in the closed state
func New(name string, cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultConfig().MaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultConfig().ResetTimeout
	}
	return &Breaker{name: name, cfg: cfg, state: StateClosed}
}

// Name returns the guarded operation's name
func (b *Breaker) Name() string { return b.name }

// State returns the current state, applying the lazy open-to-half-open
// transition first so callers observe the state the next call would see.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && time.Since(b.lastFailure) >= b.cfg.ResetTimeout {
		return StateHalfOpen
	}
	return b.state
}

// Failures returns the consecutive-failure count
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset returns the breaker to closed with a zero failure count
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
}

// allow reports whether a primary attempt may proceed, transitioning
// open circuits to half-open once the reset timeout has elapsed.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(b.lastFailure) >= b.cfg.ResetTimeout {
			b.state = StateHalfOpen
			return true
		}
		return false
	case StateHalfOpen:
		// One trial at a time; a concurrent caller goes to fallback.
		return false
	default:
		return false
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = StateClosed
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = time.Now()
	if b.state == StateHalfOpen || b.failures >= b.cfg.MaxFailures {
		b.state = StateOpen
	}
}

// Call runs primary through the breaker and falls back on skip or failure.
//
// If the circuit allows it, primary runs; success closes the circuit and
// returns its result. On primary failure the failure is recorded and
// fallback runs. If the circuit is open, fallback runs without a primary
// attempt. Call itself never fails when fallback succeeds; a fallback error
// propagates to the caller.
func Call[T any](ctx context.Context, b *Breaker, primary, fallback func(context.Context) (T, error)) (T, error) {
	if b.allow() {
		out, err := primary(ctx)
		if err == nil {
			b.recordSuccess()
			return out, nil
		}
		b.recordFailure()
	}
	return fallback(ctx)
}
