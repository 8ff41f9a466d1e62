// Package probe implements bounded, retrying readiness checks.
//
// A probe polls one service's health signal until it reports healthy,
// the attempt budget is exhausted, or the overall deadline passes. It
// never blocks longer than timeout plus one poll interval and stops
// promptly when its context is cancelled.
package probe

import (
	"context"
	"time"

	"stackctl/internal/catalog"
	"stackctl/pkg/logging"
)

const (
	// DefaultTimeout is the overall probe deadline when the catalog
	// does not declare one.
	DefaultTimeout = 60 * time.Second

	// DefaultInterval is the wait between attempts.
	DefaultInterval = 3 * time.Second

	// DefaultMaxAttempts bounds the number of health checks.
	DefaultMaxAttempts = 20
)

// Outcome is the terminal result of a readiness probe.
type Outcome string

const (
	OutcomeReady    Outcome = "Ready"
	OutcomeFailed   Outcome = "Failed"   // attempt budget exhausted
	OutcomeTimedOut Outcome = "TimedOut" // deadline passed or cancelled
)

// Result records one service's probe run.
type Result struct {
	Service  string
	Attempts int
	Elapsed  time.Duration
	Outcome  Outcome
	LastErr  error
}

// Checker performs a single readiness check.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// normalize fills unset readiness fields with defaults.
func normalize(spec catalog.ReadinessSpec) catalog.ReadinessSpec {
	if spec.Timeout <= 0 {
		spec.Timeout = catalog.Duration(DefaultTimeout)
	}
	if spec.Interval <= 0 {
		spec.Interval = catalog.Duration(DefaultInterval)
	}
	if spec.MaxAttempts <= 0 {
		spec.MaxAttempts = DefaultMaxAttempts
	}
	return spec
}

// Run polls checker until it succeeds, attempts reach spec.MaxAttempts,
// or spec.Timeout elapses, whichever comes first. The interval between
// attempts is fixed; waits are timer-based so concurrent probes are not
// serialized behind a slow service.
func Run(ctx context.Context, service string, spec catalog.ReadinessSpec, checker Checker) Result {
	spec = normalize(spec)

	timeout := time.Duration(spec.Timeout)
	interval := time.Duration(spec.Interval)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result := Result{Service: service}

	for {
		result.Attempts++
		if err := checker.Check(ctx); err == nil {
			result.Outcome = OutcomeReady
			result.Elapsed = time.Since(start)
			logging.Debug("ReadinessProbe", "Service %s ready after %d attempt(s) in %s",
				service, result.Attempts, result.Elapsed.Round(time.Millisecond))
			return result
		} else {
			result.LastErr = err
			logging.Debug("ReadinessProbe", "Service %s not ready (attempt %d/%d): %v",
				service, result.Attempts, spec.MaxAttempts, err)
		}

		if result.Attempts >= spec.MaxAttempts {
			result.Outcome = OutcomeFailed
			result.Elapsed = time.Since(start)
			return result
		}

		select {
		case <-ctx.Done():
			result.Outcome = OutcomeTimedOut
			result.Elapsed = time.Since(start)
			if result.LastErr == nil {
				result.LastErr = ctx.Err()
			}
			return result
		case <-time.After(interval):
		}
	}
}
