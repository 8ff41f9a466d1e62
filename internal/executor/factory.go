package executor

import "fmt"

// Kind names an executor implementation.
type Kind string

const (
	KindDocker     Kind = "docker"
	KindKubernetes Kind = "kubernetes"
)

// Options carries the target selection shared by all executor kinds.
type Options struct {
	// Context is the executor target: a kubeconfig context for the
	// kubernetes executor, a daemon address for docker. Taken from the
	// --context flag or the STACKCTL_CONTEXT environment variable.
	Context string
	// Project scopes the docker executor to one compose project.
	Project string
	// Namespace scopes the kubernetes executor.
	Namespace string
}

// New builds the executor for the configured kind.
func New(kind Kind, opts Options) (Executor, error) {
	switch kind {
	case KindDocker:
		return NewDocker(DockerOptions{Host: opts.Context, Project: opts.Project})
	case KindKubernetes:
		return NewKube(KubeOptions{Context: opts.Context, Namespace: opts.Namespace})
	default:
		return nil, fmt.Errorf("unknown executor kind %q (supported: docker, kubernetes)", kind)
	}
}
