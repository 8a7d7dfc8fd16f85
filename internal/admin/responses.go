package admin

import (
	"time"

	"notaryfix/internal/jurisdiction/models"
	"notaryfix/pkg/platform/audit"
)

// DatasetStatusResponse describes the installed dataset snapshot.
type DatasetStatusResponse struct {
	LoadedAt *time.Time    `json:"loaded_at,omitempty"`
	Counts   models.Counts `json:"counts"`
	States   []string      `json:"states"`
}

// AuditListResponse wraps audit events for one subject.
type AuditListResponse struct {
	Subject string        `json:"subject"`
	Events  []audit.Event `json:"events"`
	Total   int           `json:"total"`
}
