// Package lifecycle drives tier-by-tier stack startup.
//
// The controller runs tiers strictly in order: tier i+1 never sees a
// start call until tier i's verification has concluded. Within a tier,
// start calls and readiness probes run concurrently under a bounded
// limit so one slow service does not serialize the rest. A tier that
// fails verification under strict gating aborts the run; services
// already started are deliberately left as they are (no rollback).
package lifecycle

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"stackctl/internal/catalog"
	"stackctl/internal/classify"
	"stackctl/internal/executor"
	"stackctl/internal/probe"
	"stackctl/internal/teardown"
	"stackctl/pkg/logging"
)

// Policy selects how a tier's verification result gates progress.
type Policy string

const (
	// PolicyStrict requires every service in a tier to reach Ready
	// before the next tier starts. This is the default.
	PolicyStrict Policy = "strict"
	// PolicyOptimistic logs readiness failures but proceeds anyway,
	// matching the behavior of the shell scripts this tool replaces.
	PolicyOptimistic Policy = "optimistic"
)

// cancelTeardownTimeout bounds the best-effort cleanup pass that runs
// when an operator interrupts a run.
const cancelTeardownTimeout = 30 * time.Second

// Config tunes the controller. Zero values fall back to defaults.
type Config struct {
	// Concurrency bounds parallel start calls and probes within a tier
	// so the executor is not overwhelmed. Defaults to 4.
	Concurrency int
	// Policy gates tier progression. Defaults to PolicyStrict.
	Policy Policy
	// DefaultReadiness fills unset readiness fields of catalog entries.
	DefaultReadiness catalog.ReadinessSpec
}

// Controller sequences the startup of a classified service set.
type Controller struct {
	exec executor.Executor
	cfg  Config
}

// New creates a lifecycle controller for the given executor.
func New(exec executor.Executor, cfg Config) *Controller {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyStrict
	}
	return &Controller{exec: exec, cfg: cfg}
}

// Up brings the declared services up tier by tier. The returned session
// is non-nil on every path, including failures, so the caller can
// always render a status summary.
func (c *Controller) Up(ctx context.Context, services []catalog.ServiceDefinition) (*Session, error) {
	session := NewSession(services)

	// Connectivity is validated once, before any lifecycle transition.
	if err := c.exec.Ping(ctx); err != nil {
		session.SetPhase(PhaseFailed, 0)
		return session, err
	}

	session.SetPhase(PhasePlanning, 0)
	tiers, err := classify.Classify(services)
	if err != nil {
		session.SetPhase(PhaseFailed, 0)
		return session, err
	}
	logging.Info("Lifecycle", "Session %s: planned %d tier(s) for %d service(s)",
		session.ID, len(tiers), len(services))

	for i, tier := range tiers {
		if ctx.Err() != nil {
			return session, c.abortCancelled(session, i)
		}

		session.SetPhase(PhaseStarting, i)
		logging.Info("Lifecycle", "Starting tier %s (%d service(s))", tier.Tier, len(tier.Services))
		c.startTier(ctx, session, tier)

		session.SetPhase(PhaseVerifying, i)
		c.verifyTier(ctx, session, tier)

		if ctx.Err() != nil {
			return session, c.abortCancelled(session, i)
		}

		var failed []string
		for _, svc := range tier.Services {
			if session.Status(svc.Name) != StatusReady {
				failed = append(failed, svc.Name)
			}
		}
		if len(failed) > 0 {
			if c.cfg.Policy == PolicyOptimistic {
				logging.Warn("Lifecycle", "Tier %s has %d unready service(s), proceeding optimistically: %v",
					tier.Tier, len(failed), failed)
				continue
			}
			// Strict gating: remaining tiers are not started, started
			// tiers are left running.
			session.SetPhase(PhaseAborting, i)
			logging.Error("Lifecycle", nil, "Tier %s failed verification, aborting", tier.Tier)
			session.SetPhase(PhaseFailed, i)
			return session, &TierAbortError{Tier: tier.Tier, Failed: failed}
		}
	}

	session.SetPhase(PhaseRunning, len(tiers))
	logging.Info("Lifecycle", "Session %s: all tiers satisfied", session.ID)
	return session, nil
}

// startTier issues start calls for every service in the tier with
// bounded parallelism. Start failures are recorded in the session, not
// returned: verification decides whether the tier aborts.
func (c *Controller) startTier(ctx context.Context, session *Session, tier classify.TierGroup) {
	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)

	for _, svc := range tier.Services {
		g.Go(func() error {
			session.SetStatus(svc.Name, StatusStarting)
			if err := c.exec.Start(ctx, svc.Name); err != nil {
				logging.Error("Lifecycle", err, "Failed to start service %s", svc.Name)
				session.SetStatus(svc.Name, StatusFailed)
			}
			return nil
		})
	}
	g.Wait()
}

// verifyTier probes every started service in the tier concurrently and
// records Ready or Failed per service.
func (c *Controller) verifyTier(ctx context.Context, session *Session, tier classify.TierGroup) {
	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)

	for _, svc := range tier.Services {
		if session.Status(svc.Name) != StatusStarting {
			continue
		}
		g.Go(func() error {
			spec := c.mergeReadiness(svc.Readiness)
			result := probe.Run(ctx, svc.Name, spec, probe.ForService(svc, c.exec))
			session.SetResult(result)
			switch {
			case result.Outcome == probe.OutcomeReady:
				session.SetStatus(svc.Name, StatusReady)
			case ctx.Err() != nil:
				// The run was cancelled mid-probe. That is not a readiness
				// verdict: the service stays Starting so the cleanup pass
				// still covers it.
			default:
				logging.Warn("Lifecycle", "Service %s readiness %s after %d attempt(s): %v",
					svc.Name, result.Outcome, result.Attempts, result.LastErr)
				session.SetStatus(svc.Name, StatusFailed)
			}
			return nil
		})
	}
	g.Wait()
}

// mergeReadiness layers the controller defaults under a service's
// readiness declaration.
func (c *Controller) mergeReadiness(spec catalog.ReadinessSpec) catalog.ReadinessSpec {
	d := c.cfg.DefaultReadiness
	if spec.Timeout <= 0 {
		spec.Timeout = d.Timeout
	}
	if spec.Interval <= 0 {
		spec.Interval = d.Interval
	}
	if spec.MaxAttempts <= 0 {
		spec.MaxAttempts = d.MaxAttempts
	}
	return spec
}

// abortCancelled handles an operator interrupt: services already
// started get a best-effort teardown pass, and the session always ends
// in a reportable terminal phase.
func (c *Controller) abortCancelled(session *Session, tierIndex int) error {
	session.SetPhase(PhaseAborting, tierIndex)
	logging.Warn("Lifecycle", "Session %s cancelled, tearing down started services", session.ID)

	started := session.Started()
	if len(started) > 0 {
		// The run context is already cancelled; cleanup gets its own
		// bounded context.
		tctx, cancel := context.WithTimeout(context.Background(), cancelTeardownTimeout)
		defer cancel()

		td := teardown.New(c.exec)
		result, err := td.TeardownNames(tctx, started, teardown.Options{})
		if err != nil {
			logging.Error("Lifecycle", err, "Best-effort teardown after cancellation incomplete")
		}
		if result != nil {
			for _, name := range result.Stopped {
				session.SetStatus(name, StatusStopped)
			}
		}
	}

	session.SetPhase(PhaseAborted, tierIndex)
	return context.Canceled
}
