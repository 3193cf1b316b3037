// Package observability starts the process-wide tracing and profiling hooks.
package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/baseball-stats/internal/config"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
)

// Stack holds whatever Start turned on so it can be stopped in reverse.
type Stack struct {
	logger *logging.Logger
	stops  []namedStop
}

type namedStop struct {
	name string
	stop func(context.Context) error
}

// Start enables uptrace, pyroscope and the pprof listener according to cfg.
// If one of them fails the ones already started are stopped again.
func Start(cfg config.Config, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Stack{logger: logger}

	shutdownTracing, err := InitUptrace(cfg, logger.Named("uptrace"))
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	s.push("uptrace", shutdownTracing)

	stopProfiler, err := InitPyroscope(cfg, logger.Named("pyroscope"))
	if err != nil {
		_ = s.Shutdown(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	s.push("pyroscope", func(context.Context) error { return stopProfiler() })

	pprofSrv, err := StartPprofServer(cfg, logger.Named("pprof"))
	if err != nil {
		_ = s.Shutdown(context.Background())
		return nil, fmt.Errorf("start pprof: %w", err)
	}
	s.push("pprof", func(ctx context.Context) error { return stopPprofServer(ctx, pprofSrv) })

	return s, nil
}

func (s *Stack) push(name string, stop func(context.Context) error) {
	s.stops = append(s.stops, namedStop{name: name, stop: stop})
}

// Shutdown stops every component, last started first, and joins the errors.
// It is safe to call more than once.
func (s *Stack) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(s.stops) - 1; i >= 0; i-- {
		st := s.stops[i]
		if err := st.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", st.name, err))
			continue
		}
		s.logger.Debug("observability component stopped", "name", st.name)
	}
	s.stops = nil
	return errors.Join(errs...)
}
