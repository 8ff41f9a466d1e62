package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"stackctl/pkg/logging"
)

// composeServiceLabel is set by docker compose on every container it
// creates and maps a container back to its declared service name.
const composeServiceLabel = "com.docker.compose.service"

// composeProjectLabel scopes containers to one compose project.
const composeProjectLabel = "com.docker.compose.project"

// Docker drives services as compose-managed containers through the
// Docker API. Containers are expected to have been created (e.g. by
// `docker compose up --no-start` or a previous run); Start and Stop
// toggle them.
type Docker struct {
	cli     *client.Client
	project string
	host    string
}

// DockerOptions configures the Docker executor.
type DockerOptions struct {
	// Host overrides the Docker daemon address. Empty means DOCKER_HOST
	// or the first discovered local socket.
	Host string
	// Project scopes operations to one compose project. Empty matches
	// any project.
	Project string
}

// NewDocker creates a Docker executor. If no host is configured and
// DOCKER_HOST is unset, common socket paths are probed so Docker
// Desktop installs work without extra configuration.
func NewDocker(opts DockerOptions) (*Docker, error) {
	clientOpts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}

	host := opts.Host
	if host == "" && os.Getenv("DOCKER_HOST") == "" {
		if sock := findSocket(); sock != "" {
			host = "unix://" + sock
		}
	}
	if host != "" {
		clientOpts = append(clientOpts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &Docker{cli: cli, project: opts.Project, host: host}, nil
}

// findSocket returns the first existing Docker socket path, or "".
func findSocket() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	candidates := []string{
		"/var/run/docker.sock",
	}
	if home != "" {
		candidates = append(candidates,
			filepath.Join(home, ".docker", "run", "docker.sock"),
			filepath.Join(home, ".colima", "default", "docker.sock"),
		)
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Ping implements Executor.
func (d *Docker) Ping(ctx context.Context) error {
	if _, err := d.cli.Ping(ctx); err != nil {
		target := d.host
		if target == "" {
			target = "docker daemon"
		}
		return &ConnectivityError{Target: target, Err: err}
	}
	return nil
}

// findContainer resolves a service name to its container ID. Compose
// labels are tried first, then a plain container-name match.
func (d *Docker) findContainer(ctx context.Context, service string) (string, error) {
	f := filters.NewArgs()
	f.Add("label", composeServiceLabel+"="+service)
	if d.project != "" {
		f.Add("label", composeProjectLabel+"="+d.project)
	}

	containers, err := d.cli.ContainerList(ctx, container.ListOptions{All: true, Filters: f})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %w", err)
	}
	if len(containers) > 0 {
		return containers[0].ID, nil
	}

	// Fall back to matching the container name directly for stacks not
	// managed by compose.
	containers, err = d.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %w", err)
	}
	for _, c := range containers {
		for _, name := range c.Names {
			if strings.TrimPrefix(name, "/") == service {
				return c.ID, nil
			}
		}
	}
	return "", nil
}

// Start implements Executor.
func (d *Docker) Start(ctx context.Context, service string) error {
	id, err := d.findContainer(ctx, service)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("no container found for service %q", service)
	}
	if err := d.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container for %q: %w", service, err)
	}
	logging.Debug("DockerExecutor", "Issued start for service %s (container %.12s)", service, id)
	return nil
}

// HealthCheck implements Executor. Containers with a configured
// HEALTHCHECK report their health status; plain containers report
// Healthy while running.
func (d *Docker) HealthCheck(ctx context.Context, service string) (Health, error) {
	id, err := d.findContainer(ctx, service)
	if err != nil {
		return HealthUnknown, err
	}
	if id == "" {
		return HealthUnknown, nil
	}

	info, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return HealthUnknown, fmt.Errorf("failed to inspect container for %q: %w", service, err)
	}
	if info.State == nil {
		return HealthUnknown, nil
	}
	if info.State.Health != nil {
		switch info.State.Health.Status {
		case "healthy":
			return HealthHealthy, nil
		case "starting":
			return HealthUnknown, nil
		default:
			return HealthUnhealthy, nil
		}
	}
	if info.State.Running {
		return HealthHealthy, nil
	}
	return HealthUnhealthy, nil
}

// Stop implements Executor. A missing container is treated as already
// stopped.
func (d *Docker) Stop(ctx context.Context, service string, opts StopOptions) error {
	id, err := d.findContainer(ctx, service)
	if err != nil {
		return err
	}
	if id == "" {
		logging.Debug("DockerExecutor", "Service %s has no container, nothing to stop", service)
		return nil
	}

	if err := d.cli.ContainerStop(ctx, id, container.StopOptions{}); err != nil {
		return fmt.Errorf("failed to stop container for %q: %w", service, err)
	}

	if opts.RemoveVolumes {
		removeOpts := container.RemoveOptions{RemoveVolumes: true}
		if err := d.cli.ContainerRemove(ctx, id, removeOpts); err != nil {
			return fmt.Errorf("failed to remove container for %q: %w", service, err)
		}
	}

	logging.Debug("DockerExecutor", "Stopped service %s (container %.12s)", service, id)
	return nil
}

// ListRunning implements Executor.
func (d *Docker) ListRunning(ctx context.Context) ([]string, error) {
	f := filters.NewArgs()
	if d.project != "" {
		f.Add("label", composeProjectLabel+"="+d.project)
	}

	containers, err := d.cli.ContainerList(ctx, container.ListOptions{Filters: f})
	if err != nil {
		target := d.host
		if target == "" {
			target = "docker daemon"
		}
		return nil, &ConnectivityError{Target: target, Err: err}
	}

	var running []string
	for _, c := range containers {
		if svc, ok := c.Labels[composeServiceLabel]; ok {
			running = append(running, svc)
			continue
		}
		if len(c.Names) > 0 {
			running = append(running, strings.TrimPrefix(c.Names[0], "/"))
		}
	}
	return running, nil
}

// PruneImages implements ImagePruner.
func (d *Docker) PruneImages(ctx context.Context) error {
	report, err := d.cli.ImagesPrune(ctx, filters.Args{})
	if err != nil {
		return fmt.Errorf("failed to prune images: %w", err)
	}
	logging.Info("DockerExecutor", "Pruned %d images, reclaimed %d bytes",
		len(report.ImagesDeleted), report.SpaceReclaimed)
	return nil
}

// Endpoints implements EndpointResolver by reading published ports from
// the running container.
func (d *Docker) Endpoints(ctx context.Context, service string) ([]string, error) {
	id, err := d.findContainer(ctx, service)
	if err != nil || id == "" {
		return nil, err
	}

	info, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container for %q: %w", service, err)
	}
	if info.NetworkSettings == nil {
		return nil, nil
	}

	var endpoints []string
	for port, bindings := range info.NetworkSettings.Ports {
		for _, b := range bindings {
			endpoints = append(endpoints, hostEndpoint(b))
		}
		if len(bindings) == 0 {
			logging.Debug("DockerExecutor", "Service %s port %s/%s is not published", service, port.Port(), port.Proto())
		}
	}
	return endpoints, nil
}

// hostEndpoint renders a published port binding as a reachable
// host:port string.
func hostEndpoint(b nat.PortBinding) string {
	host := b.HostIP
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("%s:%s", host, b.HostPort)
}
