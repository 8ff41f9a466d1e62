package catalog

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Tier is the startup precedence category of a service. Tiers are
// totally ordered: database < backend < gateway < frontend.
type Tier string

const (
	TierDatabase Tier = "database"
	TierBackend  Tier = "backend"
	TierGateway  Tier = "gateway"
	TierFrontend Tier = "frontend"
)

// Order returns the startup position of the tier, or -1 for an unknown tier.
func (t Tier) Order() int {
	switch t {
	case TierDatabase:
		return 0
	case TierBackend:
		return 1
	case TierGateway:
		return 2
	case TierFrontend:
		return 3
	default:
		return -1
	}
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return t.Order() >= 0
}

// AllTiers lists the known tiers in startup order.
func AllTiers() []Tier {
	return []Tier{TierDatabase, TierBackend, TierGateway, TierFrontend}
}

// Group selects which add-on bundle a service belongs to. The up
// command can restrict a run to a single group.
type Group string

const (
	GroupApps       Group = "apps"
	GroupMonitoring Group = "monitoring"
	GroupGitops     Group = "gitops"
)

// CheckType selects how a service's readiness is probed.
type CheckType string

const (
	// CheckExecutor asks the executor for the service's health signal.
	// This is the default when no readiness block is declared.
	CheckExecutor CheckType = "executor"
	// CheckHTTP performs an HTTP GET against the target URL and expects
	// a 2xx response.
	CheckHTTP CheckType = "http"
	// CheckTCP attempts a TCP connection to the target host:port.
	CheckTCP CheckType = "tcp"
)

// Duration wraps time.Duration so catalog files can use human-readable
// values like "30s" or "5m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ReadinessSpec describes how and how long to probe a service for
// readiness before its tier is considered satisfied.
type ReadinessSpec struct {
	Type        CheckType `yaml:"type,omitempty"`        // executor, http, or tcp
	Target      string    `yaml:"target,omitempty"`      // URL for http, host:port for tcp
	Timeout     Duration  `yaml:"timeout,omitempty"`     // overall probe deadline
	Interval    Duration  `yaml:"interval,omitempty"`    // wait between attempts
	MaxAttempts int       `yaml:"maxAttempts,omitempty"` // attempt budget
}

// ServiceDefinition declares one service of the stack.
type ServiceDefinition struct {
	Name      string        `yaml:"name"`
	Tier      Tier          `yaml:"tier,omitempty"`      // explicit tier wins over the naming heuristic
	Group     Group         `yaml:"group,omitempty"`     // defaults to apps
	DependsOn []string      `yaml:"dependsOn,omitempty"` // must resolve to an earlier or equal tier
	Readiness ReadinessSpec `yaml:"readiness,omitempty"`
	Endpoints []string      `yaml:"endpoints,omitempty"` // host:port strings for reporting
}

// databaseKeywords are name fragments that classify a service into the
// database tier when no explicit tier is declared.
var databaseKeywords = []string{
	"postgres", "mysql", "mariadb", "mongo", "redis",
	"cassandra", "etcd", "database", "db",
}

// EffectiveTier resolves the service's tier. An explicit tier tag wins;
// otherwise a naming heuristic applies, falling back to backend. The
// second return value is false only when an explicit tier tag is not a
// known tier.
func (s ServiceDefinition) EffectiveTier() (Tier, bool) {
	if s.Tier != "" {
		if !s.Tier.Valid() {
			return "", false
		}
		return s.Tier, true
	}

	name := strings.ToLower(s.Name)
	for _, kw := range databaseKeywords {
		if strings.Contains(name, kw) {
			return TierDatabase, true
		}
	}
	if strings.HasSuffix(name, "-gateway") || strings.HasPrefix(name, "gateway-") || name == "api-gateway" || name == "gateway" {
		return TierGateway, true
	}
	if strings.HasSuffix(name, "-frontend") || strings.HasPrefix(name, "frontend-") || name == "frontend" || name == "web" || name == "ui" {
		return TierFrontend, true
	}
	return TierBackend, true
}

// EffectiveGroup resolves the service's group, defaulting to apps.
func (s ServiceDefinition) EffectiveGroup() Group {
	if s.Group == "" {
		return GroupApps
	}
	return s.Group
}

// Catalog is the declared set of services for a run.
type Catalog struct {
	Services []ServiceDefinition `yaml:"services"`
}

// Names returns the service names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Services))
	for _, svc := range c.Services {
		names = append(names, svc.Name)
	}
	return names
}

// FilterGroup returns the services belonging to the given group, in
// declaration order.
func (c *Catalog) FilterGroup(group Group) []ServiceDefinition {
	var out []ServiceDefinition
	for _, svc := range c.Services {
		if svc.EffectiveGroup() == group {
			out = append(out, svc)
		}
	}
	return out
}
