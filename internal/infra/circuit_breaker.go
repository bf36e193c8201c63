package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards the SMTP relay: after enough consecutive send failures the email
// worker stops dialing and fails fast until the open timeout elapses, then a
// limited number of probes decide whether to close again.

// BreakerState is the current position of a CircuitBreaker.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // calls flow
	BreakerOpen                         // calls fail immediately
	BreakerHalfOpen                     // probing recovery
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerSettings holds tunable parameters. Zero values take the defaults.
type BreakerSettings struct {
	Name             string
	FailureThreshold int           // consecutive failures that open the breaker (default 5)
	SuccessThreshold int           // consecutive half-open successes that close it (default 2)
	OpenTimeout      time.Duration // time spent open before probing (default 60s)
}

// BreakerSnapshot is a point-in-time view for the health endpoint.
type BreakerSnapshot struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	Failures int    `json:"failures"`
}

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	settings BreakerSettings
	now      func() time.Time

	mu        sync.Mutex
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
}

func NewCircuitBreaker(s BreakerSettings) *CircuitBreaker {
	if s.Name == "" {
		s.Name = "default"
	}
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = 5
	}
	if s.SuccessThreshold <= 0 {
		s.SuccessThreshold = 2
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 60 * time.Second
	}
	return &CircuitBreaker{settings: s, now: time.Now}
}

// State returns the current state, moving open → half-open once the timeout has elapsed.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState()
}

// Snapshot reports name, state and consecutive failure count.
func (cb *CircuitBreaker) Snapshot() BreakerSnapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return BreakerSnapshot{
		Name:     cb.settings.Name,
		State:    cb.currentState().String(),
		Failures: cb.failures,
	}
}

// Execute runs fn unless the breaker is open, and records its outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == BreakerOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

// currentState must be called under lock.
func (cb *CircuitBreaker) currentState() BreakerState {
	if cb.state == BreakerOpen && cb.now().Sub(cb.openedAt) >= cb.settings.OpenTimeout {
		cb.transition(BreakerHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) recordFailure() {
	cb.failures++
	switch cb.state {
	case BreakerClosed:
		if cb.failures >= cb.settings.FailureThreshold {
			cb.transition(BreakerOpen)
		}
	case BreakerHalfOpen:
		cb.transition(BreakerOpen)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	switch cb.state {
	case BreakerClosed:
		cb.failures = 0
	case BreakerHalfOpen:
		cb.successes++
		if cb.successes >= cb.settings.SuccessThreshold {
			cb.transition(BreakerClosed)
		}
	}
}

func (cb *CircuitBreaker) transition(to BreakerState) {
	from := cb.state
	cb.state = to
	cb.successes = 0
	switch to {
	case BreakerOpen:
		cb.openedAt = cb.now()
	case BreakerClosed:
		cb.failures = 0
	}
	log.Warn().
		Str("breaker", cb.settings.Name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("circuit breaker state change")
}
