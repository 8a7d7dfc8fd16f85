package gates

import "strings"

// Plan is a subscription tier. Tiers are totally ordered: free < pro < agency.
type Plan string

const (
	PlanFree   Plan = "free"
	PlanPro    Plan = "pro"
	PlanAgency Plan = "agency"
)

var planRank = map[Plan]int{
	PlanFree:   0,
	PlanPro:    1,
	PlanAgency: 2,
}

// Rank returns the plan's position in the tier order. Unknown plans rank as
// free.
func (p Plan) Rank() int {
	return planRank[p]
}

// NormalizePlan maps input to a known plan; unknown or empty input is free.
func NormalizePlan(s string) Plan {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := planRank[p]; ok {
		return p
	}
	return PlanFree
}

// Role is the user's role within their account.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleOwner      Role = "owner"
	RoleDispatcher Role = "dispatcher"
	RoleNotary     Role = "notary"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleOwner:      {},
	RoleDispatcher: {},
	RoleNotary:     {},
}

// ParseRole reports whether s names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := knownRoles[r]
	return r, ok
}

// Feature is one plan-gated capability.
type Feature struct {
	Key          string
	RequiredPlan Plan // empty means no plan restriction
	AllowedRoles []Role
	Badge        string
	Title        string
	Description  string
}

// Subject is who is asking.
type Subject struct {
	PlanTier string
	Role     string
}

// Decision is the outcome for one feature and subject.
type Decision struct {
	FeatureKey   string
	Known        bool
	Allowed      bool
	RoleAllowed  bool
	PlanAllowed  bool
	RequiredPlan Plan
	AllowedRoles []Role
	Badge        string
	Title        string
	Description  string
	// Plan and Role are the normalized inputs the decision was made for.
	Plan Plan
	Role Role
	// Bypassed is true when the admin bypass granted access the plan or
	// role checks alone would have refused.
	Bypassed bool
}
