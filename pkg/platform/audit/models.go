package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events that change what guidance notaries see.
	// Examples: dataset reloads, rejected dataset records.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to access control.
	// Examples: admin token failures, gate denials.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine, high-volume activity that can be sampled.
	// Examples: evaluations, guidance lookups.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from services to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	// Subject is the user the action was performed for, when known.
	Subject string `json:"subject,omitempty"`
	Action  string `json:"action"`
	// StateCode and ActType locate compliance events.
	StateCode string `json:"state_code,omitempty"`
	ActType   string `json:"act_type,omitempty"`
	// Decision is the outcome (e.g. "critical", "allowed", "denied", "ok").
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	// ActorID tracks who performed the action when different from Subject.
	ActorID string `json:"actor_id,omitempty"`
}

type AuditEvent string

const (
	// Compliance evaluation events
	EventComplianceEvaluated AuditEvent = "compliance_evaluated"
	EventGuidanceViewed      AuditEvent = "guidance_viewed"

	// Gate events
	EventGateAllowed AuditEvent = "gate_allowed"
	EventGateDenied  AuditEvent = "gate_denied"

	// Dataset events
	EventDatasetReloaded     AuditEvent = "dataset_reloaded"
	EventDatasetReloadFailed AuditEvent = "dataset_reload_failed"
	EventDatasetRecordSkip   AuditEvent = "dataset_record_skipped"

	// Admin events
	EventAdminAuthFailed AuditEvent = "admin_auth_failed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventDatasetReloaded:     CategoryCompliance,
	EventDatasetReloadFailed: CategoryCompliance,
	EventDatasetRecordSkip:   CategoryCompliance,

	EventGateDenied:      CategorySecurity,
	EventAdminAuthFailed: CategorySecurity,

	EventComplianceEvaluated: CategoryOperations,
	EventGuidanceViewed:      CategoryOperations,
	EventGateAllowed:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister reads events back; implemented by stores that keep them locally.
type Lister interface {
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
