package config

import (
	"time"

	"stackctl/internal/catalog"
)

// GetDefaultConfig returns the built-in configuration. User and project
// config files are layered on top of this.
func GetDefaultConfig() StackctlConfig {
	return StackctlConfig{
		Executor:      "docker",
		CatalogPath:   "stack.yaml",
		Concurrency:   4,
		PartialPolicy: "strict",
		Readiness: ReadinessDefaults{
			Timeout:     catalog.Duration(60 * time.Second),
			Interval:    catalog.Duration(3 * time.Second),
			MaxAttempts: 20,
		},
	}
}
