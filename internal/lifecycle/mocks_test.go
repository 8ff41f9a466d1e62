package lifecycle

import (
	"context"
	"sync"

	"stackctl/internal/executor"
)

// neverHealthy marks a service that fails every health check.
const neverHealthy = -1

// fakeExecutor is a scriptable in-memory executor. Services become
// healthy after a configurable number of health checks so tests can
// exercise retry loops without a real runtime.
type fakeExecutor struct {
	mu sync.Mutex

	pingErr  error
	startErr map[string]error
	stopErr  map[string]error

	// healthyAfter maps a service to the number of checks it must see
	// before reporting healthy. Unset means healthy on the first check.
	// neverHealthy means it stays unhealthy forever.
	healthyAfter map[string]int

	checks     map[string]int
	startOrder []string
	stopOrder  []string
	running    map[string]bool
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		startErr:     make(map[string]error),
		stopErr:      make(map[string]error),
		healthyAfter: make(map[string]int),
		checks:       make(map[string]int),
		running:      make(map[string]bool),
	}
}

func (f *fakeExecutor) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeExecutor) Start(ctx context.Context, service string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startOrder = append(f.startOrder, service)
	if err := f.startErr[service]; err != nil {
		return err
	}
	f.running[service] = true
	return nil
}

func (f *fakeExecutor) HealthCheck(ctx context.Context, service string) (executor.Health, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks[service]++

	threshold, ok := f.healthyAfter[service]
	if !ok {
		threshold = 1
	}
	if threshold == neverHealthy {
		return executor.HealthUnhealthy, nil
	}
	if f.checks[service] >= threshold {
		return executor.HealthHealthy, nil
	}
	return executor.HealthUnknown, nil
}

func (f *fakeExecutor) Stop(ctx context.Context, service string, opts executor.StopOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopOrder = append(f.stopOrder, service)
	if err := f.stopErr[service]; err != nil {
		return err
	}
	delete(f.running, service)
	return nil
}

func (f *fakeExecutor) ListRunning(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.running))
	for name := range f.running {
		out = append(out, name)
	}
	return out, nil
}

// startIndex returns the position of service in the recorded start
// order, or -1 if it was never started.
func (f *fakeExecutor) startIndex(service string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, name := range f.startOrder {
		if name == service {
			return i
		}
	}
	return -1
}

func (f *fakeExecutor) stopped() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stopOrder...)
}

func (f *fakeExecutor) healthChecks(service string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks[service]
}
