package executor

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"stackctl/pkg/logging"
)

// Kube drives services as Kubernetes Deployments. Start scales a
// Deployment up, Stop scales it to zero, and health follows the ready
// replica count. Manifests are expected to already exist in the target
// namespace; stackctl never applies them.
type Kube struct {
	clientset kubernetes.Interface
	namespace string
	context   string
}

// KubeOptions configures the Kubernetes executor.
type KubeOptions struct {
	// Context selects the kubeconfig context. Empty means the current
	// context.
	Context string
	// Namespace the stack's Deployments live in. Defaults to "default".
	Namespace string
}

// NewKube creates a Kubernetes executor from the local kubeconfig.
func NewKube(opts KubeOptions) (*Kube, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	configOverrides := &clientcmd.ConfigOverrides{}
	if opts.Context != "" {
		configOverrides.CurrentContext = opts.Context
	}

	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)
	config, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get Kubernetes client config for context %q: %w", opts.Context, err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes clientset: %w", err)
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "default"
	}

	return &Kube{clientset: clientset, namespace: namespace, context: opts.Context}, nil
}

// NewKubeWithClient creates a Kubernetes executor around an existing
// clientset. Used by tests with a fake clientset.
func NewKubeWithClient(clientset kubernetes.Interface, namespace string) *Kube {
	if namespace == "" {
		namespace = "default"
	}
	return &Kube{clientset: clientset, namespace: namespace}
}

func (k *Kube) target() string {
	if k.context != "" {
		return "kube context " + k.context
	}
	return "current kube context"
}

// Ping implements Executor.
func (k *Kube) Ping(ctx context.Context) error {
	if _, err := k.clientset.Discovery().ServerVersion(); err != nil {
		return &ConnectivityError{Target: k.target(), Err: err}
	}
	return nil
}

// Start implements Executor by scaling the service's Deployment up to
// one replica if it is currently scaled to zero.
func (k *Kube) Start(ctx context.Context, service string) error {
	deployments := k.clientset.AppsV1().Deployments(k.namespace)
	dep, err := deployments.Get(ctx, service, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get deployment %q: %w", service, err)
	}

	if dep.Spec.Replicas != nil && *dep.Spec.Replicas > 0 {
		logging.Debug("KubeExecutor", "Deployment %s already scaled to %d replicas", service, *dep.Spec.Replicas)
		return nil
	}

	replicas := int32(1)
	dep.Spec.Replicas = &replicas
	if _, err := deployments.Update(ctx, dep, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to scale up deployment %q: %w", service, err)
	}
	logging.Debug("KubeExecutor", "Scaled deployment %s to 1 replica", service)
	return nil
}

// HealthCheck implements Executor. A Deployment is healthy when all
// desired replicas are ready.
func (k *Kube) HealthCheck(ctx context.Context, service string) (Health, error) {
	dep, err := k.clientset.AppsV1().Deployments(k.namespace).Get(ctx, service, metav1.GetOptions{})
	if err != nil {
		if errors.IsNotFound(err) {
			return HealthUnknown, nil
		}
		return HealthUnknown, fmt.Errorf("failed to get deployment %q: %w", service, err)
	}

	if deploymentReady(dep) {
		return HealthHealthy, nil
	}
	return HealthUnhealthy, nil
}

// deploymentReady reports whether every desired replica is ready.
func deploymentReady(dep *appsv1.Deployment) bool {
	desired := int32(1)
	if dep.Spec.Replicas != nil {
		desired = *dep.Spec.Replicas
	}
	return desired > 0 && dep.Status.ReadyReplicas >= desired
}

// Stop implements Executor by scaling the Deployment to zero. Volume
// removal does not apply to this executor; PersistentVolumeClaims are
// left untouched.
func (k *Kube) Stop(ctx context.Context, service string, opts StopOptions) error {
	deployments := k.clientset.AppsV1().Deployments(k.namespace)
	dep, err := deployments.Get(ctx, service, metav1.GetOptions{})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to get deployment %q: %w", service, err)
	}

	if opts.RemoveVolumes {
		logging.Warn("KubeExecutor", "Volume removal is not supported for Kubernetes stacks; skipping for %s", service)
	}

	replicas := int32(0)
	dep.Spec.Replicas = &replicas
	if _, err := deployments.Update(ctx, dep, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to scale down deployment %q: %w", service, err)
	}
	logging.Debug("KubeExecutor", "Scaled deployment %s to 0 replicas", service)
	return nil
}

// ListRunning implements Executor.
func (k *Kube) ListRunning(ctx context.Context) ([]string, error) {
	deps, err := k.clientset.AppsV1().Deployments(k.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, &ConnectivityError{Target: k.target(), Err: err}
	}

	var running []string
	for _, dep := range deps.Items {
		if dep.Status.ReadyReplicas > 0 {
			running = append(running, dep.Name)
		}
	}
	return running, nil
}
