package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackctl/internal/catalog"
)

// fastReadiness keeps probe loops short enough for unit tests.
var fastReadiness = catalog.ReadinessSpec{
	Timeout:     catalog.Duration(2 * time.Second),
	Interval:    catalog.Duration(2 * time.Millisecond),
	MaxAttempts: 5,
}

func fastConfig() Config {
	return Config{DefaultReadiness: fastReadiness}
}

func fullStack() []catalog.ServiceDefinition {
	return []catalog.ServiceDefinition{
		{Name: "frontend", Tier: catalog.TierFrontend},
		{Name: "api-gateway", Tier: catalog.TierGateway},
		{Name: "rental-service", Tier: catalog.TierBackend},
		{Name: "postgres", Tier: catalog.TierDatabase},
		{Name: "redis", Tier: catalog.TierDatabase},
	}
}

func TestUp_FullSuccess(t *testing.T) {
	exec := newFakeExecutor()
	// postgres warms up over a couple of checks; the rest are healthy
	// immediately.
	exec.healthyAfter["postgres"] = 3

	ctrl := New(exec, fastConfig())
	session, err := ctrl.Up(context.Background(), fullStack())
	require.NoError(t, err)

	assert.Equal(t, PhaseRunning, session.Phase())
	for _, name := range []string{"postgres", "redis", "rental-service", "api-gateway", "frontend"} {
		assert.Equal(t, StatusReady, session.Status(name), name)
	}

	// Databases start before the backend, the backend before the
	// gateway, the gateway before the frontend.
	assert.Less(t, exec.startIndex("postgres"), exec.startIndex("rental-service"))
	assert.Less(t, exec.startIndex("redis"), exec.startIndex("rental-service"))
	assert.Less(t, exec.startIndex("rental-service"), exec.startIndex("api-gateway"))
	assert.Less(t, exec.startIndex("api-gateway"), exec.startIndex("frontend"))

	// postgres needed its warmup checks before going ready.
	assert.GreaterOrEqual(t, exec.healthChecks("postgres"), 3)

	result, ok := session.Result("postgres")
	require.True(t, ok)
	assert.Equal(t, 3, result.Attempts)
}

func TestUp_SkipsEmptyTiers(t *testing.T) {
	// No gateway declared: backend hands off directly to frontend.
	exec := newFakeExecutor()
	services := []catalog.ServiceDefinition{
		{Name: "postgres", Tier: catalog.TierDatabase},
		{Name: "rental-service", Tier: catalog.TierBackend},
		{Name: "frontend", Tier: catalog.TierFrontend},
	}

	ctrl := New(exec, fastConfig())
	session, err := ctrl.Up(context.Background(), services)
	require.NoError(t, err)
	assert.Equal(t, PhaseRunning, session.Phase())
	assert.Less(t, exec.startIndex("rental-service"), exec.startIndex("frontend"))
}

func TestUp_PartialFailureContainment(t *testing.T) {
	// redis never becomes healthy. Under strict gating the database
	// tier fails verification: postgres stays up, and no later tier
	// ever receives a start call.
	exec := newFakeExecutor()
	exec.healthyAfter["redis"] = neverHealthy

	ctrl := New(exec, fastConfig())
	session, err := ctrl.Up(context.Background(), fullStack())
	require.Error(t, err)

	var abortErr *TierAbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, catalog.TierDatabase, abortErr.Tier)
	assert.Equal(t, []string{"redis"}, abortErr.Failed)

	assert.Equal(t, PhaseFailed, session.Phase())
	assert.Equal(t, StatusReady, session.Status("postgres"))
	assert.Equal(t, StatusFailed, session.Status("redis"))
	assert.Equal(t, StatusPending, session.Status("rental-service"))
	assert.Equal(t, StatusPending, session.Status("api-gateway"))
	assert.Equal(t, StatusPending, session.Status("frontend"))

	assert.Equal(t, -1, exec.startIndex("rental-service"))
	assert.Equal(t, -1, exec.startIndex("frontend"))

	// No rollback: the healthy database is left running.
	assert.Empty(t, exec.stopped())

	// The failed probe exhausted its attempt budget, no more.
	result, ok := session.Result("redis")
	require.True(t, ok)
	assert.Equal(t, fastReadiness.MaxAttempts, result.Attempts)
}

func TestUp_OptimisticPolicyProceeds(t *testing.T) {
	exec := newFakeExecutor()
	exec.healthyAfter["redis"] = neverHealthy

	cfg := fastConfig()
	cfg.Policy = PolicyOptimistic
	ctrl := New(exec, cfg)

	session, err := ctrl.Up(context.Background(), fullStack())
	require.NoError(t, err)

	assert.Equal(t, PhaseRunning, session.Phase())
	assert.Equal(t, StatusFailed, session.Status("redis"))
	assert.Equal(t, StatusReady, session.Status("rental-service"))
	assert.Equal(t, StatusReady, session.Status("frontend"))
}

func TestUp_StartFailureAbortsTier(t *testing.T) {
	exec := newFakeExecutor()
	exec.startErr["postgres"] = errors.New("image pull failed")

	ctrl := New(exec, fastConfig())
	session, err := ctrl.Up(context.Background(), fullStack())
	require.Error(t, err)

	var abortErr *TierAbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Contains(t, abortErr.Failed, "postgres")

	assert.Equal(t, StatusFailed, session.Status("postgres"))
	// A service that never started is not probed.
	assert.Zero(t, exec.healthChecks("postgres"))
	// Its tier sibling still gets its chance.
	assert.Equal(t, StatusReady, session.Status("redis"))
}

func TestUp_PingFailure(t *testing.T) {
	exec := newFakeExecutor()
	exec.pingErr = errors.New("cannot connect to the Docker daemon")

	ctrl := New(exec, fastConfig())
	session, err := ctrl.Up(context.Background(), fullStack())
	require.Error(t, err)

	assert.Equal(t, PhaseFailed, session.Phase())
	assert.Empty(t, exec.startOrder)
	for _, svc := range fullStack() {
		assert.Equal(t, StatusPending, session.Status(svc.Name))
	}
}

func TestUp_CancellationTearsDownStarted(t *testing.T) {
	// postgres comes up immediately, redis never does. Cancelling while
	// redis is still being probed must stop both: the already-ready
	// service and the one whose probe the cancel interrupted.
	exec := newFakeExecutor()
	exec.healthyAfter["redis"] = neverHealthy

	cfg := fastConfig()
	cfg.DefaultReadiness.Timeout = catalog.Duration(10 * time.Second)
	cfg.DefaultReadiness.MaxAttempts = 10000
	ctrl := New(exec, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	session, err := ctrl.Up(ctx, fullStack())
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, PhaseAborted, session.Phase())
	assert.Equal(t, StatusStopped, session.Status("postgres"))
	assert.Contains(t, exec.stopped(), "postgres")

	// An interrupted probe is not a readiness verdict: redis was
	// started by this run and must be swept up by the cleanup pass.
	assert.Equal(t, StatusStopped, session.Status("redis"))
	assert.Contains(t, exec.stopped(), "redis")

	assert.Equal(t, StatusPending, session.Status("rental-service"))
}

func TestUp_PreCancelledContext(t *testing.T) {
	exec := newFakeExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := New(exec, fastConfig())
	session, err := ctrl.Up(ctx, fullStack())
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, PhaseAborted, session.Phase())
	assert.Empty(t, exec.startOrder)
}

func TestUp_ClassificationFailure(t *testing.T) {
	exec := newFakeExecutor()
	services := []catalog.ServiceDefinition{
		{Name: "thing", Tier: "middleware"},
	}

	ctrl := New(exec, fastConfig())
	session, err := ctrl.Up(context.Background(), services)
	require.Error(t, err)
	assert.Equal(t, PhaseFailed, session.Phase())
	assert.Empty(t, exec.startOrder)
}
