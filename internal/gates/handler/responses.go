package handler

import (
	"notaryfix/internal/gates"
)

// DecisionResponse is the wire form of one gate decision.
type DecisionResponse struct {
	FeatureKey   string   `json:"feature_key"`
	Known        bool     `json:"known"`
	Allowed      bool     `json:"allowed"`
	RoleAllowed  bool     `json:"role_allowed"`
	PlanAllowed  bool     `json:"plan_allowed"`
	RequiredPlan string   `json:"required_plan,omitempty"`
	AllowedRoles []string `json:"allowed_roles,omitempty"`
	Badge        string   `json:"badge,omitempty"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Bypassed     bool     `json:"bypassed,omitempty"`
}

// ListResponse is the body of GET /v1/gates.
type ListResponse struct {
	Plan  string             `json:"plan"`
	Role  string             `json:"role"`
	Gates []DecisionResponse `json:"gates"`
}

// FromDecision maps a decision to its wire form.
func FromDecision(d gates.Decision) DecisionResponse {
	roles := make([]string, 0, len(d.AllowedRoles))
	for _, r := range d.AllowedRoles {
		roles = append(roles, string(r))
	}
	return DecisionResponse{
		FeatureKey:   d.FeatureKey,
		Known:        d.Known,
		Allowed:      d.Allowed,
		RoleAllowed:  d.RoleAllowed,
		PlanAllowed:  d.PlanAllowed,
		RequiredPlan: string(d.RequiredPlan),
		AllowedRoles: roles,
		Badge:        d.Badge,
		Title:        d.Title,
		Description:  d.Description,
		Bypassed:     d.Bypassed,
	}
}

// FromDecisions maps a full gate listing.
func FromDecisions(decisions []gates.Decision) ListResponse {
	resp := ListResponse{Gates: make([]DecisionResponse, 0, len(decisions))}
	for _, d := range decisions {
		resp.Gates = append(resp.Gates, FromDecision(d))
	}
	if len(decisions) > 0 {
		resp.Plan = string(decisions[0].Plan)
		resp.Role = string(decisions[0].Role)
	}
	return resp
}
