package authz

import "fmt"

// RoleSeed is a predefined role.
type RoleSeed struct {
	Role     string
	Policies []Policy
}

// BuiltinRoleSeeds is the built-in role matrix. The affiliate and
// doctor roles gate attribution and payout eligibility; finance holds
// the fee schedule and payout ledger endpoints.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "affiliate",
			Policies: []Policy{
				{Object: "/payouts/affiliate", Action: "GET"},
			},
		},
		{
			Role: "doctor",
			Policies: []Policy{
				{Object: "/payouts/doctor", Action: "GET"},
			},
		},
		{
			Role: "finance",
			Policies: []Policy{
				{Object: "/payouts/:recipient_class", Action: "GET"},
				{Object: "/fees", Action: "*"},
				{Object: "/admin/audit-logs", Action: "GET"},
			},
		},
		{
			Role: "operations",
			Policies: []Policy{
				{Object: "/orders/:id/status", Action: "POST"},
				{Object: "/admin/orders", Action: "GET"},
			},
		},
	}
}

// Bootstrap seeds the built-in roles and their policies.
func Bootstrap(svc *Service) error {
	if svc == nil {
		return fmt.Errorf("authz service is nil")
	}
	for _, seed := range BuiltinRoleSeeds() {
		if _, err := svc.EnsureRole(seed.Role); err != nil {
			return fmt.Errorf("seed role %s failed: %w", seed.Role, err)
		}
		for _, policy := range seed.Policies {
			if err := svc.GrantRolePolicy(seed.Role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("seed policy for %s failed: %w", seed.Role, err)
			}
		}
	}
	return nil
}
