package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogError reports a malformed service declaration. It is fatal
// before any service is touched.
type CatalogError struct {
	Service string
	Reason  string
}

func (e *CatalogError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("invalid catalog: %s", e.Reason)
	}
	return fmt.Sprintf("invalid catalog: service %q: %s", e.Service, e.Reason)
}

// Load reads and validates a catalog from a YAML file. Loading is
// read-only; it never touches the executor.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog invariants: unique names, known tier and
// group tags, dependsOn references that exist, and dependencies that do
// not point at a later tier.
func (c *Catalog) Validate() error {
	if len(c.Services) == 0 {
		return &CatalogError{Reason: "no services declared"}
	}

	byName := make(map[string]ServiceDefinition, len(c.Services))
	for _, svc := range c.Services {
		if svc.Name == "" {
			return &CatalogError{Reason: "service with empty name"}
		}
		if _, dup := byName[svc.Name]; dup {
			return &CatalogError{Service: svc.Name, Reason: "duplicate service name"}
		}
		if svc.Tier != "" && !svc.Tier.Valid() {
			return &CatalogError{Service: svc.Name, Reason: fmt.Sprintf("unknown tier %q", svc.Tier)}
		}
		switch svc.Group {
		case "", GroupApps, GroupMonitoring, GroupGitops:
		default:
			return &CatalogError{Service: svc.Name, Reason: fmt.Sprintf("unknown group %q", svc.Group)}
		}
		switch svc.Readiness.Type {
		case "", CheckExecutor, CheckHTTP, CheckTCP:
		default:
			return &CatalogError{Service: svc.Name, Reason: fmt.Sprintf("unknown readiness check type %q", svc.Readiness.Type)}
		}
		byName[svc.Name] = svc
	}

	for _, svc := range c.Services {
		tier, ok := svc.EffectiveTier()
		if !ok {
			return &CatalogError{Service: svc.Name, Reason: fmt.Sprintf("unknown tier %q", svc.Tier)}
		}
		for _, dep := range svc.DependsOn {
			if dep == svc.Name {
				return &CatalogError{Service: svc.Name, Reason: "service depends on itself"}
			}
			depSvc, exists := byName[dep]
			if !exists {
				return &CatalogError{Service: svc.Name, Reason: fmt.Sprintf("dependsOn references unknown service %q", dep)}
			}
			depTier, ok := depSvc.EffectiveTier()
			if !ok {
				return &CatalogError{Service: dep, Reason: fmt.Sprintf("unknown tier %q", depSvc.Tier)}
			}
			if depTier.Order() > tier.Order() {
				return &CatalogError{
					Service: svc.Name,
					Reason:  fmt.Sprintf("depends on %q in later tier %s (own tier %s)", dep, depTier, tier),
				}
			}
		}
	}

	return nil
}
