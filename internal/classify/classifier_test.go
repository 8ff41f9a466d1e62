package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackctl/internal/catalog"
)

func TestClassify_OrderedTiers(t *testing.T) {
	services := []catalog.ServiceDefinition{
		{Name: "frontend", Tier: catalog.TierFrontend},
		{Name: "api-gateway", Tier: catalog.TierGateway},
		{Name: "rental-service", Tier: catalog.TierBackend},
		{Name: "postgres", Tier: catalog.TierDatabase},
		{Name: "redis", Tier: catalog.TierDatabase},
	}

	tiers, err := Classify(services)
	require.NoError(t, err)
	require.Len(t, tiers, 4)

	assert.Equal(t, catalog.TierDatabase, tiers[0].Tier)
	assert.Len(t, tiers[0].Services, 2)
	assert.Equal(t, catalog.TierBackend, tiers[1].Tier)
	assert.Equal(t, catalog.TierGateway, tiers[2].Tier)
	assert.Equal(t, catalog.TierFrontend, tiers[3].Tier)
}

func TestClassify_EmptyTiersOmitted(t *testing.T) {
	// No gateway service declared: the gateway tier must not appear.
	services := []catalog.ServiceDefinition{
		{Name: "postgres", Tier: catalog.TierDatabase},
		{Name: "rental-service", Tier: catalog.TierBackend},
		{Name: "frontend", Tier: catalog.TierFrontend},
	}

	tiers, err := Classify(services)
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	for _, tier := range tiers {
		assert.NotEqual(t, catalog.TierGateway, tier.Tier)
	}
}

func TestClassify_HeuristicFallback(t *testing.T) {
	services := []catalog.ServiceDefinition{
		{Name: "mongo"},
		{Name: "billing"},
		{Name: "api-gateway"},
		{Name: "shop-frontend"},
	}

	tiers, err := Classify(services)
	require.NoError(t, err)
	require.Len(t, tiers, 4)
	assert.Equal(t, "mongo", tiers[0].Services[0].Name)
	assert.Equal(t, "billing", tiers[1].Services[0].Name)
	assert.Equal(t, "api-gateway", tiers[2].Services[0].Name)
	assert.Equal(t, "shop-frontend", tiers[3].Services[0].Name)
}

func TestClassify_InvalidTier(t *testing.T) {
	services := []catalog.ServiceDefinition{
		{Name: "thing", Tier: "middleware"},
	}

	_, err := Classify(services)
	require.Error(t, err)

	var classErr *ClassificationError
	require.ErrorAs(t, err, &classErr)
	assert.Equal(t, "thing", classErr.Service)
}

func TestReverse(t *testing.T) {
	services := []catalog.ServiceDefinition{
		{Name: "postgres", Tier: catalog.TierDatabase},
		{Name: "frontend", Tier: catalog.TierFrontend},
	}

	tiers, err := Classify(services)
	require.NoError(t, err)

	reversed := Reverse(tiers)
	require.Len(t, reversed, 2)
	assert.Equal(t, catalog.TierFrontend, reversed[0].Tier)
	assert.Equal(t, catalog.TierDatabase, reversed[1].Tier)

	// The original slice is untouched.
	assert.Equal(t, catalog.TierDatabase, tiers[0].Tier)
}
