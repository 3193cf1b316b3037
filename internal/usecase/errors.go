package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/baseball-stats/internal/platform/resilience"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrUpstream              = errors.New("upstream request failed")
	ErrNormalization         = errors.New("normalization failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// wrapDependencyError classifies a failed call to an external collaborator.
// An open breaker means we never reached the dependency.
func wrapDependencyError(op string, err error) error {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return fmt.Errorf("%w: %s: %v", ErrDependencyUnavailable, op, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
	}
}
