package models

import (
	"time"

	"notaryfix/pkg/domain"
)

// RuleStatus is the publication state of a jurisdiction rule.
type RuleStatus string

const (
	RuleStatusDraft    RuleStatus = "draft"
	RuleStatusActive   RuleStatus = "active"
	RuleStatusArchived RuleStatus = "archived"
)

// IsValid reports whether s is one of the known statuses.
func (s RuleStatus) IsValid() bool {
	switch s {
	case RuleStatusDraft, RuleStatusActive, RuleStatusArchived:
		return true
	}
	return false
}

// JurisdictionRule is the compliance policy for one state.
//
// Invariants:
//   - Archived rules never take part in evaluation
//   - When several non-archived rules exist for a state, the one with the
//     latest PublishedAt is authoritative
//
// Rules are authored by the admin data layer and only read here.
type JurisdictionRule struct {
	StateCode           domain.StateCode `json:"state_code" yaml:"state_code"`
	Status              RuleStatus       `json:"status" yaml:"status"`
	ThumbprintRequired  bool             `json:"thumbprint_required" yaml:"thumbprint_required"`
	MaxFeePerAct        *float64         `json:"max_fee_per_act,omitempty" yaml:"max_fee_per_act"`
	WitnessRequirements string           `json:"witness_requirements,omitempty" yaml:"witness_requirements"`
	SpecialActCaveats   string           `json:"special_act_caveats,omitempty" yaml:"special_act_caveats"`
	Notes               string           `json:"notes,omitempty" yaml:"notes"`
	RONPermitted        bool             `json:"ron_permitted" yaml:"ron_permitted"`
	RONStatute          string           `json:"ron_statute,omitempty" yaml:"ron_statute"`
	Version             string           `json:"version,omitempty" yaml:"version"`
	PublishedAt         *time.Time       `json:"published_at,omitempty" yaml:"published_at"`
	UpdatedAt           *time.Time       `json:"updated_at,omitempty" yaml:"updated_at"`
}

// IsArchived reports whether the rule is excluded from evaluation.
func (r *JurisdictionRule) IsArchived() bool {
	return r.Status == RuleStatusArchived
}

// FeeScheduleEntry is a per-act fee cap, more specific than
// JurisdictionRule.MaxFeePerAct.
type FeeScheduleEntry struct {
	StateCode     domain.StateCode `json:"state_code" yaml:"state_code"`
	ActType       string           `json:"act_type" yaml:"act_type"`
	MaxFee        float64          `json:"max_fee" yaml:"max_fee"`
	EffectiveDate *time.Time       `json:"effective_date,omitempty" yaml:"effective_date"`
	UpdatedAt     *time.Time       `json:"updated_at,omitempty" yaml:"updated_at"`
}

// IDRequirement lists the identification a state accepts from signers.
type IDRequirement struct {
	StateCode              domain.StateCode `json:"state_code" yaml:"state_code"`
	AcceptedIDTypes        []string         `json:"accepted_id_types" yaml:"accepted_id_types"`
	ExpirationRequired     bool             `json:"expiration_required" yaml:"expiration_required"`
	CredibleWitnessAllowed bool             `json:"credible_witness_allowed" yaml:"credible_witness_allowed"`
	UpdatedAt              *time.Time       `json:"updated_at,omitempty" yaml:"updated_at"`
}

// Dataset is the full set of admin-published records handed to the evaluator.
type Dataset struct {
	Rules          []JurisdictionRule `json:"state_rules" yaml:"state_rules"`
	FeeSchedules   []FeeScheduleEntry `json:"fee_schedules" yaml:"fee_schedules"`
	IDRequirements []IDRequirement    `json:"id_requirements" yaml:"id_requirements"`
}

// Counts summarizes dataset size for logs, metrics and admin responses.
type Counts struct {
	Rules          int `json:"state_rules"`
	FeeSchedules   int `json:"fee_schedules"`
	IDRequirements int `json:"id_requirements"`
}

// Counts returns the number of records of each kind.
func (d Dataset) Counts() Counts {
	return Counts{
		Rules:          len(d.Rules),
		FeeSchedules:   len(d.FeeSchedules),
		IDRequirements: len(d.IDRequirements),
	}
}
