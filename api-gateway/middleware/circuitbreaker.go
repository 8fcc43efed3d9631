package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deshimart/commerce/pkg/logger"
)

// CircuitState represents the state of the breaker
type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half-open"
)

const halfOpenSuccesses = 3

// CircuitBreaker trips after consecutive backend failures so the gateway
// answers fast instead of queueing on a dead backend
type CircuitBreaker struct {
	maxFailures     int
	timeout         time.Duration
	state           CircuitState
	failures        int
	successCount    int
	lastStateChange time.Time
	mu              sync.Mutex
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(maxFailures int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:     maxFailures,
		timeout:         timeout,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
}

// Allow reports whether a request may pass. Once the open timeout elapses one
// probe batch is let through half-open.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.lastStateChange) > cb.timeout {
		cb.state = StateHalfOpen
		cb.successCount = 0
		logger.Logger.Info().Msg("Circuit breaker transitioning to half-open")
	}

	return cb.state != StateOpen
}

// Record feeds the breaker one request outcome
func (cb *CircuitBreaker) Record(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if failed {
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
			if cb.state != StateOpen {
				cb.state = StateOpen
				cb.lastStateChange = time.Now()
				logger.Logger.Error().
					Int("failures", cb.failures).
					Int("threshold", cb.maxFailures).
					Msg("Circuit breaker opened")
			}
		}
		return
	}

	if cb.state == StateHalfOpen {
		cb.successCount++
		if cb.successCount >= halfOpenSuccesses {
			cb.state = StateClosed
			cb.failures = 0
			cb.lastStateChange = time.Now()
			logger.Logger.Info().Msg("Circuit breaker closed")
		}
		return
	}

	cb.failures = 0
}

// State returns the current breaker state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// CircuitBreakerMiddleware guards proxied requests with the breaker. Backend
// 5xx responses and transport errors count as failures.
func CircuitBreakerMiddleware(cb *CircuitBreaker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cb.Allow() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":       "Backend temporarily unavailable",
				"retry_after": fmt.Sprintf("%v", cb.timeout),
			})
		}

		err := c.Next()
		cb.Record(err != nil || c.Response().StatusCode() >= fiber.StatusInternalServerError)
		return err
	}
}
