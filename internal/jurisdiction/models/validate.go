package models

import (
	"fmt"
	"math"
	"strings"

	"notaryfix/pkg/domain"
	pstrings "notaryfix/pkg/platform/strings"
)

// Rejection records a dataset entry that was dropped during sanitization.
type Rejection struct {
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s[%d]: %s", r.Kind, r.Index, r.Reason)
}

// Sanitize normalizes state codes and list fields and drops records that
// cannot be evaluated safely. A bad record never poisons the rest of the
// dataset; it is reported as a Rejection instead.
func Sanitize(in Dataset) (Dataset, []Rejection) {
	var out Dataset
	var rejected []Rejection

	for i, rule := range in.Rules {
		code, err := domain.ParseStateCode(rule.StateCode.String())
		if err != nil {
			rejected = append(rejected, Rejection{Kind: "state_rules", Index: i, Reason: "invalid state_code"})
			continue
		}
		rule.StateCode = code
		if rule.Status == "" {
			rule.Status = RuleStatusActive
		}
		rule.Status = RuleStatus(strings.ToLower(string(rule.Status)))
		if !rule.Status.IsValid() {
			rejected = append(rejected, Rejection{Kind: "state_rules", Index: i, Reason: "unknown status " + string(rule.Status)})
			continue
		}
		if rule.MaxFeePerAct != nil && !validFee(*rule.MaxFeePerAct) {
			rule.MaxFeePerAct = nil
			rejected = append(rejected, Rejection{Kind: "state_rules", Index: i, Reason: "max_fee_per_act ignored"})
		}
		out.Rules = append(out.Rules, rule)
	}

	for i, entry := range in.FeeSchedules {
		code, err := domain.ParseStateCode(entry.StateCode.String())
		if err != nil {
			rejected = append(rejected, Rejection{Kind: "fee_schedules", Index: i, Reason: "invalid state_code"})
			continue
		}
		if !validFee(entry.MaxFee) {
			rejected = append(rejected, Rejection{Kind: "fee_schedules", Index: i, Reason: "invalid max_fee"})
			continue
		}
		entry.StateCode = code
		entry.ActType = strings.TrimSpace(entry.ActType)
		out.FeeSchedules = append(out.FeeSchedules, entry)
	}

	for i, req := range in.IDRequirements {
		code, err := domain.ParseStateCode(req.StateCode.String())
		if err != nil {
			rejected = append(rejected, Rejection{Kind: "id_requirements", Index: i, Reason: "invalid state_code"})
			continue
		}
		req.StateCode = code
		req.AcceptedIDTypes = pstrings.DedupeAndTrim(req.AcceptedIDTypes)
		out.IDRequirements = append(out.IDRequirements, req)
	}

	return out, rejected
}

func validFee(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
