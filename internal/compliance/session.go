package compliance

import (
	"fmt"
	"time"
)

// SessionFeeMultiplier approximates how many acts a single signing session
// covers. It is a heuristic, not a statutory limit.
const SessionFeeMultiplier = 10

// SessionFeeAdvisory flags a signing session whose total charge exceeds the
// per-act cap times SessionFeeMultiplier. The result is advisory only and is
// never merged into the ordered findings returned by Evaluate.
func SessionFeeAdvisory(req Request, ds Dataset, now time.Time) (Finding, bool) {
	total := req.Context.SessionTotal
	if total == nil || !validAmount(*total) {
		return Finding{}, false
	}
	ev, ok := resolve(req, ds, now)
	if !ok {
		return Finding{}, false
	}
	feeCap, ok := resolveFeeCap(ev)
	if !ok {
		return Finding{}, false
	}

	threshold := feeCap.Amount * SessionFeeMultiplier
	if toCents(*total) <= toCents(threshold) {
		return Finding{}, false
	}

	return Finding{
		ID:       FindingSessionFee,
		Severity: SeverityWarning,
		Title:    "Session total looks high (heuristic)",
		Body: fmt.Sprintf("$%s for this session is more than %d times the $%s per-act maximum in %s. "+
			"This is an estimate; check the number of acts performed.",
			formatAmount(*total), SessionFeeMultiplier, formatAmount(feeCap.Amount), ev.state),
		Confidence: feeCap.Confidence,
		SourceNote: "Heuristic: per-act cap x " + fmt.Sprint(SessionFeeMultiplier),
		Debug: ev.debug(fmt.Sprintf("%s; sessionTotal=%s; threshold=%s",
			feeCap.Trigger, formatAmount(*total), formatAmount(threshold))),
	}, true
}

// Summary counts findings per severity without reordering them.
type Summary struct {
	Critical int      `json:"critical"`
	Warning  int      `json:"warning"`
	Info     int      `json:"info"`
	Highest  Severity `json:"highest,omitempty"`
}

// Summarize builds the Summary for an ordered list of findings.
func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityWarning:
			s.Warning++
		case SeverityInfo:
			s.Info++
		}
	}
	switch {
	case s.Critical > 0:
		s.Highest = SeverityCritical
	case s.Warning > 0:
		s.Highest = SeverityWarning
	case s.Info > 0:
		s.Highest = SeverityInfo
	}
	return s
}
