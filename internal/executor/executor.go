// Package executor abstracts the system that actually starts, stops,
// and health-checks services: a container runtime or a Kubernetes
// cluster. The orchestration layers treat it as a single shared
// external resource and never reach past it.
package executor

import (
	"context"
	"fmt"
)

// Health is the low-level health signal for one service.
type Health string

const (
	HealthHealthy   Health = "Healthy"
	HealthUnhealthy Health = "Unhealthy"
	HealthUnknown   Health = "Unknown"
)

// StopOptions controls cleanup behavior when stopping a service.
type StopOptions struct {
	RemoveVolumes bool
}

// Executor is the collaborator interface for the underlying runtime.
type Executor interface {
	// Ping verifies the executor target is reachable. It is called once
	// before any lifecycle transition and on every cold status query.
	Ping(ctx context.Context) error

	// Start launches a single service. It returns once the start call
	// has been acknowledged, not once the service is ready.
	Start(ctx context.Context, service string) error

	// HealthCheck reports the current health signal for a service.
	// A service the executor does not know about reports HealthUnknown.
	HealthCheck(ctx context.Context, service string) (Health, error)

	// Stop stops a single service. Stopping a service that is not
	// running is not an error.
	Stop(ctx context.Context, service string, opts StopOptions) error

	// ListRunning returns the names of services currently running.
	// It must not mutate any runtime state.
	ListRunning(ctx context.Context) ([]string, error)
}

// ImagePruner is an optional interface for executors that can reclaim
// unused images after a teardown.
type ImagePruner interface {
	PruneImages(ctx context.Context) error
}

// EndpointResolver is an optional interface for executors that can
// report live reachable endpoints for a running service.
type EndpointResolver interface {
	Endpoints(ctx context.Context, service string) ([]string, error)
}

// ConnectivityError indicates the executor target is unreachable.
type ConnectivityError struct {
	Target string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("executor target %s unreachable: %v", e.Target, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}
