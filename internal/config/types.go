package config

import "stackctl/internal/catalog"

// StackctlConfig is the top-level configuration structure for stackctl.
type StackctlConfig struct {
	// Executor selects the runtime backend: "docker" or "kubernetes".
	Executor string `yaml:"executor,omitempty"`
	// Context selects the executor target (kube context or docker
	// host). Overridden by STACKCTL_CONTEXT and the --context flag.
	Context string `yaml:"context,omitempty"`
	// Project scopes the docker executor to one compose project.
	Project string `yaml:"project,omitempty"`
	// Namespace scopes the kubernetes executor.
	Namespace string `yaml:"namespace,omitempty"`
	// CatalogPath points at the stack's service catalog file.
	CatalogPath string `yaml:"catalogPath,omitempty"`
	// Concurrency bounds parallel start calls and probes per tier.
	Concurrency int `yaml:"concurrency,omitempty"`
	// PartialPolicy is "strict" or "optimistic" tier gating.
	PartialPolicy string `yaml:"partialPolicy,omitempty"`
	// Readiness provides defaults for services that do not declare
	// their own probe settings.
	Readiness ReadinessDefaults `yaml:"readiness,omitempty"`
}

// ReadinessDefaults fills unset readiness fields of catalog entries.
type ReadinessDefaults struct {
	Timeout     catalog.Duration `yaml:"timeout,omitempty"`
	Interval    catalog.Duration `yaml:"interval,omitempty"`
	MaxAttempts int              `yaml:"maxAttempts,omitempty"`
}
