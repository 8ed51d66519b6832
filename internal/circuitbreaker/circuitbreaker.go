package circuitbreaker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chandubinh-create/binhmovie/internal/metrics"
)

// State represents the current state of the circuit breaker
type State int

const (
	// StateClosed means the circuit is operating normally
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests
	StateOpen
	// StateHalfOpen means the circuit is testing if it can close
	StateHalfOpen
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config contains the configuration for a circuit breaker
type Config struct {
	Name             string           // Label used in logs and metrics
	FailureThreshold int              // Number of consecutive failures before opening
	Timeout          time.Duration    // How long to wait in OPEN before transitioning to HALF-OPEN
	HalfOpenRequests int              // Number of test requests allowed in HALF-OPEN state
	Logger           *slog.Logger     // Logger for state changes (optional)
	Now              func() time.Time // Clock (optional, defaults to time.Now)
}

// CircuitBreaker defines the interface for circuit breaker functionality
type CircuitBreaker interface {
	// Execute runs the given function if the circuit allows it
	Execute(func() error) error
	// State returns the current state of the circuit breaker
	State() State
	// Reset resets the circuit breaker to CLOSED state
	Reset()
}

var (
	// ErrCircuitOpen is returned when the circuit breaker is in OPEN state
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrHalfOpenLimitReached is returned when too many requests are made in HALF-OPEN state
	ErrHalfOpenLimitReached = errors.New("circuit breaker half-open request limit reached")
)

type breaker struct {
	config Config

	mu       sync.Mutex
	state    State
	failures int // consecutive failures while CLOSED
	trials   int // calls admitted while HALF-OPEN
	passed   int // successful trials
	openedAt time.Time
	epoch    uint64 // bumped on every state change
}

// New creates a new circuit breaker with the given configuration
func New(cfg Config) CircuitBreaker {
	if cfg.Name == "" {
		cfg.Name = "upstream"
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests <= 0 {
		cfg.HalfOpenRequests = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	metrics.SetCircuitBreakerState(cfg.Name, StateClosed.String())

	return &breaker{config: cfg, state: StateClosed}
}

// Execute runs fn when the circuit admits it and records the outcome.
// Outcomes of calls admitted before the last state change are ignored.
func (b *breaker) Execute(fn func() error) error {
	epoch, err := b.admit()
	if err != nil {
		return err
	}

	err = fn()
	b.settle(epoch, err)
	return err
}

// admit decides whether a call may run and returns the epoch it runs in.
func (b *breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.config.Now().Sub(b.openedAt) >= b.config.Timeout {
		b.moveTo(StateHalfOpen)
	}

	switch b.state {
	case StateClosed:
		return b.epoch, nil
	case StateOpen:
		return 0, ErrCircuitOpen
	case StateHalfOpen:
		if b.trials >= b.config.HalfOpenRequests {
			return 0, ErrHalfOpenLimitReached
		}
		b.trials++
		return b.epoch, nil
	default:
		return 0, fmt.Errorf("unknown circuit breaker state: %d", b.state)
	}
}

// settle records the outcome of a call admitted in epoch.
func (b *breaker) settle(epoch uint64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if epoch != b.epoch {
		return
	}

	switch b.state {
	case StateClosed:
		if err == nil {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.config.FailureThreshold {
			b.moveTo(StateOpen)
		}
	case StateHalfOpen:
		if err != nil {
			b.moveTo(StateOpen)
			return
		}
		b.passed++
		if b.passed >= b.config.HalfOpenRequests {
			b.moveTo(StateClosed)
		}
	}
}

// State returns the current state of the circuit breaker
func (b *breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset closes the circuit and clears all counters.
func (b *breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moveTo(StateClosed)
	b.failures = 0
}

// moveTo switches state and starts a new epoch. Callers hold mu.
func (b *breaker) moveTo(next State) {
	if b.state == next {
		return
	}

	b.config.Logger.Warn("circuit breaker state changed",
		"name", b.config.Name,
		"old_state", b.state.String(),
		"new_state", next.String(),
	)
	metrics.SetCircuitBreakerState(b.config.Name, next.String())

	b.state = next
	b.epoch++
	b.failures, b.trials, b.passed = 0, 0, 0
	b.openedAt = time.Time{}
	if next == StateOpen {
		b.openedAt = b.config.Now()
		metrics.RecordCircuitBreakerTrip(b.config.Name)
	}
}
