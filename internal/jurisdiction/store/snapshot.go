package store

import (
	"sort"
	"strings"

	"notaryfix/internal/jurisdiction/models"
	"notaryfix/pkg/domain"
)

// Snapshot is an immutable, indexed view over one dataset. All lookups are
// read-only, so a Snapshot can be shared across goroutines without locking.
type Snapshot struct {
	dataset models.Dataset

	rulesByState map[domain.StateCode][]models.JurisdictionRule
	feesByState  map[domain.StateCode][]models.FeeScheduleEntry
	idsByState   map[domain.StateCode]models.IDRequirement
}

// NewSnapshot indexes a dataset. The caller must not mutate the dataset's
// slices afterwards.
func NewSnapshot(ds models.Dataset) *Snapshot {
	s := &Snapshot{
		dataset:      ds,
		rulesByState: make(map[domain.StateCode][]models.JurisdictionRule),
		feesByState:  make(map[domain.StateCode][]models.FeeScheduleEntry),
		idsByState:   make(map[domain.StateCode]models.IDRequirement),
	}

	for _, rule := range ds.Rules {
		if rule.IsArchived() {
			continue
		}
		code := domain.NormalizeStateCode(rule.StateCode.String())
		s.rulesByState[code] = append(s.rulesByState[code], rule)
	}
	for code, rules := range s.rulesByState {
		sort.SliceStable(rules, func(i, j int) bool {
			return publishedAfter(rules[i], rules[j])
		})
		s.rulesByState[code] = rules
	}

	for _, entry := range ds.FeeSchedules {
		code := domain.NormalizeStateCode(entry.StateCode.String())
		s.feesByState[code] = append(s.feesByState[code], entry)
	}

	for _, req := range ds.IDRequirements {
		code := domain.NormalizeStateCode(req.StateCode.String())
		if _, exists := s.idsByState[code]; exists {
			continue
		}
		s.idsByState[code] = req
	}

	return s
}

// publishedAfter orders rules by PublishedAt descending; rules without a
// publication time sort last.
func publishedAfter(a, b models.JurisdictionRule) bool {
	switch {
	case a.PublishedAt == nil:
		return false
	case b.PublishedAt == nil:
		return true
	default:
		return a.PublishedAt.After(*b.PublishedAt)
	}
}

// Dataset returns the records this snapshot was built from.
func (s *Snapshot) Dataset() models.Dataset {
	if s == nil {
		return models.Dataset{}
	}
	return s.dataset
}

// FindActiveRule returns the authoritative rule for a state: the most recently
// published rule whose status is not archived. Returns nil when no guidance
// exists; callers must treat nil as "no guidance", not as an error.
func (s *Snapshot) FindActiveRule(stateCode string) *models.JurisdictionRule {
	if s == nil {
		return nil
	}
	rules := s.rulesByState[domain.NormalizeStateCode(stateCode)]
	if len(rules) == 0 {
		return nil
	}
	rule := rules[0]
	return &rule
}

// FindFeeEntries returns all fee entries for a state. When actType is given,
// exact (case-insensitive) act matches come first and the remaining entries
// follow in dataset order.
func (s *Snapshot) FindFeeEntries(stateCode, actType string) []models.FeeScheduleEntry {
	if s == nil {
		return nil
	}
	entries := s.feesByState[domain.NormalizeStateCode(stateCode)]
	if len(entries) == 0 {
		return nil
	}

	out := make([]models.FeeScheduleEntry, 0, len(entries))
	actType = strings.TrimSpace(actType)
	if actType == "" {
		return append(out, entries...)
	}
	for _, e := range entries {
		if strings.EqualFold(e.ActType, actType) {
			out = append(out, e)
		}
	}
	for _, e := range entries {
		if !strings.EqualFold(e.ActType, actType) {
			out = append(out, e)
		}
	}
	return out
}

// FindIDRequirement returns the ID policy for a state, or nil.
func (s *Snapshot) FindIDRequirement(stateCode string) *models.IDRequirement {
	if s == nil {
		return nil
	}
	req, ok := s.idsByState[domain.NormalizeStateCode(stateCode)]
	if !ok {
		return nil
	}
	req.AcceptedIDTypes = append([]string(nil), req.AcceptedIDTypes...)
	return &req
}

// States lists every state with at least one non-archived rule, sorted.
func (s *Snapshot) States() []domain.StateCode {
	if s == nil {
		return nil
	}
	out := make([]domain.StateCode, 0, len(s.rulesByState))
	for code := range s.rulesByState {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
