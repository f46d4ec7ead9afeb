package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

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

type CircuitBreakerConfig struct {
	Name        string
	MaxFailures int
	Timeout     time.Duration
	HalfOpenMax int
	// OnStateChange runs synchronously after the breaker's lock is released.
	OnStateChange func(name string, from, to State)
	// IsFailure decides whether an error counts against the breaker.
	// Context cancellation is ignored by default.
	IsFailure func(err error) bool
}

// CircuitBreaker stops calling a failing dependency for Timeout after
// MaxFailures consecutive errors, then lets HalfOpenMax trial calls through.
type CircuitBreaker struct {
	name          string
	maxFailures   int
	timeout       time.Duration
	halfOpenMax   int
	onStateChange func(name string, from, to State)
	isFailure     func(err error) bool
	now           func() time.Time

	mu           sync.Mutex
	state        State
	failures     int
	successes    int
	lastFailTime time.Time
}

type transition struct {
	from, to State
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 1
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = defaultIsFailure
	}

	return &CircuitBreaker{
		name:          cfg.Name,
		maxFailures:   cfg.MaxFailures,
		timeout:       cfg.Timeout,
		halfOpenMax:   cfg.HalfOpenMax,
		onStateChange: cfg.OnStateChange,
		isFailure:     cfg.IsFailure,
		now:           time.Now,
		state:         StateClosed,
	}
}

func defaultIsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	return cb.ExecuteContext(context.Background(), func(context.Context) error {
		return fn()
	})
}

func (cb *CircuitBreaker) ExecuteContext(ctx context.Context, fn func(ctx context.Context) error) error {
	allowed, t := cb.allow()
	cb.notify(t)
	if !allowed {
		return ErrCircuitOpen
	}

	err := fn(ctx)

	var after *transition
	if err != nil && cb.isFailure(err) {
		after = cb.recordFailure()
	} else if err == nil {
		after = cb.recordSuccess()
	}
	cb.notify(after)

	return err
}

func (cb *CircuitBreaker) allow() (bool, *transition) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true, nil
	case StateOpen:
		if cb.now().Sub(cb.lastFailTime) >= cb.timeout {
			return true, cb.transitionTo(StateHalfOpen)
		}
	}
	return false, nil
}

func (cb *CircuitBreaker) recordSuccess() *transition {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.halfOpenMax {
			return cb.transitionTo(StateClosed)
		}
	}
	return nil
}

func (cb *CircuitBreaker) recordFailure() *transition {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailTime = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.maxFailures {
			return cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		return cb.transitionTo(StateOpen)
	}
	return nil
}

// transitionTo must be called with cb.mu held.
func (cb *CircuitBreaker) transitionTo(newState State) *transition {
	oldState := cb.state
	cb.state = newState
	cb.failures = 0
	cb.successes = 0
	return &transition{from: oldState, to: newState}
}

func (cb *CircuitBreaker) notify(t *transition) {
	if t == nil || cb.onStateChange == nil {
		return
	}
	cb.onStateChange(cb.name, t.from, t.to)
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	t := cb.transitionTo(StateClosed)
	cb.mu.Unlock()

	if t.from != t.to {
		cb.notify(t)
	}
}

func (cb *CircuitBreaker) Stats() (state State, failures int, lastFail time.Time) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state, cb.failures, cb.lastFailTime
}
