package handler

import (
	"time"

	"notaryfix/internal/compliance"
	"notaryfix/internal/jurisdiction/models"
)

// EvaluateResponse is the body of a successful evaluation.
type EvaluateResponse struct {
	EvaluationID    string               `json:"evaluation_id"`
	StateCode       string               `json:"state_code"`
	ActType         string               `json:"act_type"`
	Grounded        bool                 `json:"grounded"`
	Notice          string               `json:"notice,omitempty"`
	Findings        []compliance.Finding `json:"findings"`
	Summary         compliance.Summary   `json:"summary"`
	SessionAdvisory *compliance.Finding  `json:"session_advisory,omitempty"`
	EvaluatedAt     time.Time            `json:"evaluated_at"`
}

// FromReport maps a report to its wire form.
func FromReport(r *compliance.Report) EvaluateResponse {
	findings := r.Findings
	if findings == nil {
		findings = []compliance.Finding{}
	}
	return EvaluateResponse{
		EvaluationID:    r.EvaluationID,
		StateCode:       r.StateCode,
		ActType:         r.ActType,
		Grounded:        r.Grounded,
		Notice:          r.Notice,
		Findings:        findings,
		Summary:         r.Summary,
		SessionAdvisory: r.SessionAdvisory,
		EvaluatedAt:     r.EvaluatedAt,
	}
}

// GuidanceResponse is the body of GET /v1/jurisdictions/{stateCode}.
type GuidanceResponse struct {
	StateCode     string                    `json:"state_code"`
	Grounded      bool                      `json:"grounded"`
	Notice        string                    `json:"notice,omitempty"`
	Confidence    compliance.Confidence     `json:"confidence"`
	Rule          *models.JurisdictionRule  `json:"rule,omitempty"`
	FeeSchedules  []models.FeeScheduleEntry `json:"fee_schedules"`
	IDRequirement *models.IDRequirement     `json:"id_requirement,omitempty"`
}

// FromGuidance maps guidance to its wire form.
func FromGuidance(g *compliance.Guidance) GuidanceResponse {
	fees := g.FeeEntries
	if fees == nil {
		fees = []models.FeeScheduleEntry{}
	}
	return GuidanceResponse{
		StateCode:     g.StateCode,
		Grounded:      g.Grounded,
		Notice:        g.Notice,
		Confidence:    g.Confidence,
		Rule:          g.Rule,
		FeeSchedules:  fees,
		IDRequirement: g.IDRequirement,
	}
}
