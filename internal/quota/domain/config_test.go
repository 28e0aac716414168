package domain

import (
	"testing"

	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
	"github.com/stretchr/testify/assert"
)

func TestLimitsFor(t *testing.T) {
	assert.Equal(t, 100, LimitsFor(tenantdomain.TierStarter).MaxPatients)
	assert.Equal(t, 500, LimitsFor(tenantdomain.TierProfessional).MaxPatients)
	assert.Equal(t, 100, LimitsFor(tenantdomain.TierEnterprise).StorageGB)
}

func TestLimitsForUnknownTierFallsBackToStarter(t *testing.T) {
	limits := LimitsFor(tenantdomain.SubscriptionTier("PLATINUM"))
	assert.Equal(t, LimitsFor(tenantdomain.TierStarter), limits)
}
