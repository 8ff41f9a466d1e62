// Package classify assigns catalog services to ordered startup tiers.
//
// Classification runs once per invocation so the startup order is a
// verifiable data structure rather than incidental iteration order.
// An explicit tier tag always wins; the naming heuristic in the catalog
// package is only a fallback.
package classify

import (
	"fmt"

	"stackctl/internal/catalog"
	"stackctl/pkg/logging"
)

// ClassificationError reports a service that could not be assigned to
// a tier. It is fatal before any service is touched.
type ClassificationError struct {
	Service string
	Reason  string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("cannot classify service %q: %s", e.Service, e.Reason)
}

// TierGroup is an ordered bucket of services sharing a tier.
type TierGroup struct {
	Tier     catalog.Tier
	Services []catalog.ServiceDefinition
}

// Classify assigns every service to a tier and returns the tiers in
// startup order (database, backend, gateway, frontend). Tiers with no
// services are omitted.
func Classify(services []catalog.ServiceDefinition) ([]TierGroup, error) {
	buckets := make(map[catalog.Tier][]catalog.ServiceDefinition)

	for _, svc := range services {
		tier, ok := svc.EffectiveTier()
		if !ok {
			return nil, &ClassificationError{
				Service: svc.Name,
				Reason:  fmt.Sprintf("unknown tier %q and no fallback applies", svc.Tier),
			}
		}
		if svc.Tier == "" {
			logging.Debug("Classifier", "Service %s classified as %s by naming heuristic", svc.Name, tier)
		}
		buckets[tier] = append(buckets[tier], svc)
	}

	var tiers []TierGroup
	for _, tier := range catalog.AllTiers() {
		if svcs, ok := buckets[tier]; ok {
			tiers = append(tiers, TierGroup{Tier: tier, Services: svcs})
		}
	}
	return tiers, nil
}

// Reverse returns the tiers in teardown order (frontend first).
func Reverse(tiers []TierGroup) []TierGroup {
	out := make([]TierGroup, len(tiers))
	for i, tg := range tiers {
		out[len(tiers)-1-i] = tg
	}
	return out
}
