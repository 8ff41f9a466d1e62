package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"stackctl/internal/catalog"
	"stackctl/internal/executor"
)

// HTTPChecker succeeds when a GET to URL returns a 2xx status.
type HTTPChecker struct {
	URL    string
	Client *http.Client
}

func (h *HTTPChecker) Check(ctx context.Context) error {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", h.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned status %d", h.URL, resp.StatusCode)
	}
	return nil
}

// TCPChecker succeeds when a TCP connection to Address can be opened.
type TCPChecker struct {
	Address string
}

func (t *TCPChecker) Check(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: 3 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", t.Address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", t.Address, err)
	}
	defer conn.Close()
	return nil
}

// ExecutorChecker succeeds when the executor reports the service
// healthy. HealthUnknown counts as not ready so that a container still
// warming up keeps being polled.
type ExecutorChecker struct {
	Exec    executor.Executor
	Service string
}

func (e *ExecutorChecker) Check(ctx context.Context) error {
	health, err := e.Exec.HealthCheck(ctx, e.Service)
	if err != nil {
		return err
	}
	if health != executor.HealthHealthy {
		return fmt.Errorf("service %s reports %s", e.Service, health)
	}
	return nil
}

// ForService returns the checker declared by the service's readiness
// descriptor, defaulting to the executor health signal.
func ForService(svc catalog.ServiceDefinition, exec executor.Executor) Checker {
	switch svc.Readiness.Type {
	case catalog.CheckHTTP:
		return &HTTPChecker{URL: svc.Readiness.Target}
	case catalog.CheckTCP:
		return &TCPChecker{Address: svc.Readiness.Target}
	default:
		return &ExecutorChecker{Exec: exec, Service: svc.Name}
	}
}
