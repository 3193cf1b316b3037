package resilience

import "time"

// CircuitBreakerConfig is loaded from <PREFIX>_CIRCUIT_* variables.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int

	// OnStateChange, when set, is called after every transition while the
	// breaker lock is held. It must not call back into the breaker.
	OnStateChange func(from, to CircuitState)
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// Normalize replaces out-of-range values with the defaults.
func (c CircuitBreakerConfig) Normalize() CircuitBreakerConfig {
	d := DefaultCircuitBreakerConfig()
	c.FailureThreshold = orDefault(c.FailureThreshold, d.FailureThreshold)
	c.HalfOpenMaxReq = orDefault(c.HalfOpenMaxReq, d.HalfOpenMaxReq)
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	return c
}

// Build returns nil when the breaker is disabled. A nil *CircuitBreaker
// allows every call.
func (c CircuitBreakerConfig) Build() *CircuitBreaker {
	if !c.Enabled {
		return nil
	}
	return NewCircuitBreaker(c)
}

func orDefault(v, def int) int {
	if v < 1 {
		return def
	}
	return v
}
