// Package domain defines the per-tier resource quotas.
package domain

import (
	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
)

// Limits are the resource quotas granted by a subscription tier.
type Limits struct {
	MaxPatients int
	StorageGB   int
}

// tierDefaults is the authoritative tier table. Unknown tiers fall back to
// the STARTER limits so a bad mapping can never over-provision.
var tierDefaults = map[tenantdomain.SubscriptionTier]Limits{
	tenantdomain.TierStarter: {
		MaxPatients: 100,
		StorageGB:   1,
	},
	tenantdomain.TierProfessional: {
		MaxPatients: 500,
		StorageGB:   10,
	},
	tenantdomain.TierEnterprise: {
		MaxPatients: 2000,
		StorageGB:   100,
	},
}

func LimitsFor(tier tenantdomain.SubscriptionTier) Limits {
	if limits, ok := tierDefaults[tier]; ok {
		return limits
	}
	return tierDefaults[tenantdomain.TierStarter]
}
