package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/stackctl"
	projectConfigDir = ".stackctl"
	configFileName   = "config.yaml"
)

// LoadConfig loads the stackctl configuration by layering default,
// user, and project settings.
func LoadConfig() (StackctlConfig, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. Determine user-specific configuration path
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// Log this error but don't fail; user config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
			userConfig, err := loadConfigFromFile(userConfigPath)
			if err != nil {
				return StackctlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
			}
			config = mergeConfigs(config, userConfig)
		}
	}

	// 3. Determine project-specific configuration path
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		// Log this error but don't fail; project config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
			projectConfig, err := loadConfigFromFile(projectConfigPath)
			if err != nil {
				return StackctlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
			}
			config = mergeConfigs(config, projectConfig)
		}
	}

	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a StackctlConfig from a YAML file.
func loadConfigFromFile(filePath string) (StackctlConfig, error) {
	var config StackctlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return StackctlConfig{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return StackctlConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Only fields
// explicitly set in the overlay override the base.
func mergeConfigs(base, overlay StackctlConfig) StackctlConfig {
	merged := base

	if overlay.Executor != "" {
		merged.Executor = overlay.Executor
	}
	if overlay.Context != "" {
		merged.Context = overlay.Context
	}
	if overlay.Project != "" {
		merged.Project = overlay.Project
	}
	if overlay.Namespace != "" {
		merged.Namespace = overlay.Namespace
	}
	if overlay.CatalogPath != "" {
		merged.CatalogPath = overlay.CatalogPath
	}
	if overlay.Concurrency != 0 {
		merged.Concurrency = overlay.Concurrency
	}
	if overlay.PartialPolicy != "" {
		merged.PartialPolicy = overlay.PartialPolicy
	}
	if overlay.Readiness.Timeout != 0 {
		merged.Readiness.Timeout = overlay.Readiness.Timeout
	}
	if overlay.Readiness.Interval != 0 {
		merged.Readiness.Interval = overlay.Readiness.Interval
	}
	if overlay.Readiness.MaxAttempts != 0 {
		merged.Readiness.MaxAttempts = overlay.Readiness.MaxAttempts
	}

	return merged
}
