package cmd

import (
	"os"

	"stackctl/internal/catalog"
	"stackctl/internal/config"
	"stackctl/internal/executor"
	"stackctl/internal/lifecycle"
)

// loadEnvironment layers config and loads the service catalog. Flag
// overrides win over environment variables, which win over config
// files.
func loadEnvironment() (config.StackctlConfig, *catalog.Catalog, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.StackctlConfig{}, nil, err
	}

	if env := os.Getenv(contextEnvVar); env != "" {
		cfg.Context = env
	}
	if flagContext != "" {
		cfg.Context = flagContext
	}
	if flagCatalog != "" {
		cfg.CatalogPath = flagCatalog
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, cat, nil
}

// buildExecutor constructs the configured executor backend. A backend
// that cannot be constructed at all is a prerequisite failure: no
// lifecycle transition is attempted.
func buildExecutor(cfg config.StackctlConfig) (executor.Executor, error) {
	exec, err := executor.New(executor.Kind(cfg.Executor), executor.Options{
		Context:   cfg.Context,
		Project:   cfg.Project,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, &lifecycle.PrerequisiteError{Reason: "executor unavailable", Err: err}
	}
	return exec, nil
}

// controllerConfig translates file config into lifecycle settings.
func controllerConfig(cfg config.StackctlConfig) lifecycle.Config {
	return lifecycle.Config{
		Concurrency: cfg.Concurrency,
		Policy:      lifecycle.Policy(cfg.PartialPolicy),
		DefaultReadiness: catalog.ReadinessSpec{
			Timeout:     cfg.Readiness.Timeout,
			Interval:    cfg.Readiness.Interval,
			MaxAttempts: cfg.Readiness.MaxAttempts,
		},
	}
}
