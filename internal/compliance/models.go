package compliance

import (
	"notaryfix/internal/jurisdiction/models"
)

// Severity ranks a finding for display.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// FindingID is the stable slug of a check.
type FindingID string

const (
	FindingThumbprint  FindingID = "thumbprint"
	FindingFeeCap      FindingID = "fee-cap"
	FindingWitness     FindingID = "witness"
	FindingAcceptedIDs FindingID = "accepted-ids"
	FindingCaveats     FindingID = "caveats"
	FindingRON         FindingID = "ron"
	FindingSessionFee  FindingID = "session-fee"
)

// ConfidenceLabel is the human-facing bucket for a confidence score.
type ConfidenceLabel string

const (
	ConfidenceLow    ConfidenceLabel = "Low"
	ConfidenceMedium ConfidenceLabel = "Medium"
	ConfidenceHigh   ConfidenceLabel = "High"
)

// Confidence says how much to trust a finding given the age of its source.
type Confidence struct {
	Score       float64         `json:"score"`
	Label       ConfidenceLabel `json:"label"`
	FromDataset bool            `json:"from_dataset"`
}

// Debug explains which condition produced a finding. Trigger names the literal
// field and the value that fired, e.g. `rule.thumbprintRequired=true`.
type Debug struct {
	StateCode string `json:"state_code"`
	ActType   string `json:"act_type"`
	Trigger   string `json:"trigger"`
}

// Finding is one advisory produced by an evaluation. Findings are values and
// are recomputed on every call.
type Finding struct {
	ID         FindingID  `json:"id"`
	Severity   Severity   `json:"severity"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	Confidence Confidence `json:"confidence"`
	SourceNote string     `json:"source_note"`
	Debug      Debug      `json:"debug"`
}

// Request is the evaluation input. Fee is optional; a nil Fee means the caller
// has no quoted fee yet.
type Request struct {
	StateCode string
	ActType   string
	Fee       *float64
	Context   RequestContext
}

// RequestContext carries optional caller context.
type RequestContext struct {
	// SessionTotal is the total charged for the whole signing session; it
	// only feeds the session fee heuristic.
	SessionTotal *float64
	// Caller names the screen asking ("advisor", "arrive", "form-guide"),
	// used for metrics only.
	Caller string
}

// Dataset is the read side of the jurisdiction rule store. A nil Dataset
// means the caller has no published data and wants built-in rules only.
type Dataset interface {
	FindActiveRule(stateCode string) *models.JurisdictionRule
	FindFeeEntries(stateCode, actType string) []models.FeeScheduleEntry
	FindIDRequirement(stateCode string) *models.IDRequirement
}
