// Package teardown stops stack services and performs best-effort
// cleanup. Teardown is independent of startup state: it works from a
// fresh executor query, so it can run against a stack this process
// never started.
package teardown

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"stackctl/internal/catalog"
	"stackctl/internal/classify"
	"stackctl/internal/executor"
	"stackctl/pkg/logging"
)

// Options controls cleanup behavior.
type Options struct {
	RemoveVolumes bool
	PruneImages   bool
}

// ServiceFailure records one service that could not be stopped.
type ServiceFailure struct {
	Service string
	Err     error
}

// Result summarizes a teardown pass.
type Result struct {
	Stopped  []string
	Skipped  []string // declared but not running
	Failures []ServiceFailure
	Pruned   bool
}

// PartialTeardownError indicates one or more services failed to stop.
// The rest of the teardown still ran; the failures are collected here
// rather than raised on first error.
type PartialTeardownError struct {
	Failures []ServiceFailure
}

func (e *PartialTeardownError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = fmt.Sprintf("%s (%v)", f.Service, f.Err)
	}
	return fmt.Sprintf("failed to stop %d service(s): %s", len(e.Failures), strings.Join(names, ", "))
}

// stopConcurrency bounds parallel stop calls within a tier.
const stopConcurrency = 4

// Controller stops services in reverse tier order.
type Controller struct {
	exec executor.Executor
}

// New creates a teardown controller for the given executor.
func New(exec executor.Executor) *Controller {
	return &Controller{exec: exec}
}

// Teardown stops the given services, frontend tier first, and collects
// per-service failures instead of stopping at the first one. Invoking
// it when nothing is running succeeds trivially.
func (c *Controller) Teardown(ctx context.Context, services []catalog.ServiceDefinition, opts Options) (*Result, error) {
	running, err := c.exec.ListRunning(ctx)
	if err != nil {
		return nil, err
	}
	runningSet := make(map[string]bool, len(running))
	for _, name := range running {
		runningSet[name] = true
	}

	tiers, err := classify.Classify(services)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	// Frontends and gateways go first so clients are not orphaned
	// against half-stopped backends.
	for _, tier := range classify.Reverse(tiers) {
		c.stopTier(ctx, tier, runningSet, opts, result)
	}

	if opts.PruneImages {
		if pruner, ok := c.exec.(executor.ImagePruner); ok {
			if err := pruner.PruneImages(ctx); err != nil {
				logging.Warn("Teardown", "Image prune failed: %v", err)
			} else {
				result.Pruned = true
			}
		} else {
			logging.Warn("Teardown", "Executor does not support image pruning, skipping")
		}
	}

	if len(result.Failures) > 0 {
		return result, &PartialTeardownError{Failures: result.Failures}
	}
	return result, nil
}

// TeardownNames stops services identified only by name, classifying
// them with the naming heuristic. Used for cleanup after an interrupted
// run where only started names are known.
func (c *Controller) TeardownNames(ctx context.Context, names []string, opts Options) (*Result, error) {
	services := make([]catalog.ServiceDefinition, len(names))
	for i, name := range names {
		services[i] = catalog.ServiceDefinition{Name: name}
	}
	return c.Teardown(ctx, services, opts)
}

// stopTier stops one tier's running services in parallel, appending
// outcomes to result.
func (c *Controller) stopTier(ctx context.Context, tier classify.TierGroup, runningSet map[string]bool, opts Options, result *Result) {
	type outcome struct {
		service string
		err     error
	}

	var g errgroup.Group
	g.SetLimit(stopConcurrency)
	outcomes := make(chan outcome, len(tier.Services))

	stopped := 0
	for _, svc := range tier.Services {
		if !runningSet[svc.Name] {
			result.Skipped = append(result.Skipped, svc.Name)
			continue
		}
		stopped++
		g.Go(func() error {
			err := c.exec.Stop(ctx, svc.Name, executor.StopOptions{RemoveVolumes: opts.RemoveVolumes})
			outcomes <- outcome{service: svc.Name, err: err}
			return nil
		})
	}
	g.Wait()
	close(outcomes)

	for o := range outcomes {
		if o.err != nil {
			logging.Error("Teardown", o.err, "Failed to stop service %s", o.service)
			result.Failures = append(result.Failures, ServiceFailure{Service: o.service, Err: o.err})
		} else {
			logging.Info("Teardown", "Stopped service %s", o.service)
			result.Stopped = append(result.Stopped, o.service)
		}
	}

	if stopped > 0 {
		logging.Debug("Teardown", "Tier %s: issued %d stop call(s)", tier.Tier, stopped)
	}
}
