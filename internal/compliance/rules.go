package compliance

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"notaryfix/internal/jurisdiction/models"
	"notaryfix/pkg/domain"
	pstrings "notaryfix/pkg/platform/strings"
)

// maxBodyRunes bounds free-text rule fields copied into finding bodies.
const maxBodyRunes = 250

// remoteActPattern selects acts that get the RON status check. "ron" must be
// a whole word so that names like "Environmental Affidavit" do not match.
var remoteActPattern = regexp.MustCompile(`(?i)remote|\bron\b|electronic`)

// evaluation is the resolved input shared by every check.
type evaluation struct {
	state domain.StateCode
	act   string
	fee   *float64
	rule  *models.JurisdictionRule
	fees  []models.FeeScheduleEntry
	ids   *models.IDRequirement
	now   time.Time
}

// check inspects one concern and returns at most one finding.
type check func(ev evaluation) (Finding, bool)

// checks run in display order. The order is part of the contract: callers
// render findings as returned and never re-sort them.
var checks = []check{
	checkThumbprint,
	checkFeeCap,
	checkWitness,
	checkAcceptedIDs,
	checkCaveats,
	checkRON,
}

// Evaluate applies the jurisdiction checks to one notarial act and returns the
// findings in fixed check order. This is pure domain logic: no I/O, no side
// effects, and no error path. Missing or malformed data skips the affected
// finding. An empty state or act yields an empty, non-nil slice.
func Evaluate(req Request, ds Dataset, now time.Time) []Finding {
	findings := []Finding{}

	ev, ok := resolve(req, ds, now)
	if !ok {
		return findings
	}

	for _, c := range checks {
		if f, ok := c(ev); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

func resolve(req Request, ds Dataset, now time.Time) (evaluation, bool) {
	state := domain.NormalizeStateCode(req.StateCode)
	act := strings.TrimSpace(req.ActType)
	if state.IsZero() || act == "" {
		return evaluation{}, false
	}

	ev := evaluation{state: state, act: act, now: now}
	if req.Fee != nil && validAmount(*req.Fee) {
		fee := *req.Fee
		ev.fee = &fee
	}
	if ds != nil {
		ev.rule = ds.FindActiveRule(state.String())
		ev.fees = ds.FindFeeEntries(state.String(), act)
		ev.ids = ds.FindIDRequirement(state.String())
	}
	return ev, true
}

func (ev evaluation) debug(trigger string) Debug {
	return Debug{StateCode: ev.state.String(), ActType: ev.act, Trigger: trigger}
}

func (ev evaluation) ruleConfidence() Confidence {
	return ScoreConfidence(ev.rule.UpdatedAt, ev.rule.PublishedAt, ev.now)
}

// Rule 1: thumbprint. A published rule flag takes precedence over the
// built-in table so the finding carries dataset confidence when it can.
func checkThumbprint(ev evaluation) (Finding, bool) {
	f := Finding{
		ID:       FindingThumbprint,
		Severity: SeverityCritical,
		Title:    "Thumbprint required",
		Body:     fmt.Sprintf("%s requires the signer's thumbprint in your journal for %s.", ev.state, ev.act),
	}

	switch {
	case ev.rule != nil && ev.rule.ThumbprintRequired:
		f.Confidence = ev.ruleConfidence()
		f.SourceNote = ruleSourceNote(ev.rule)
		f.Debug = ev.debug("rule.thumbprintRequired=true")
	case builtinThumbprintRequired(ev.state, ev.act):
		f.Confidence = StaticConfidence()
		f.SourceNote = "Built-in rule table"
		f.Debug = ev.debug(fmt.Sprintf("builtinThumbprint[%s|%s]=true", ev.state, ev.act))
	default:
		return Finding{}, false
	}
	return f, true
}

// FeeCap is a resolved per-act fee limit and where it came from.
type FeeCap struct {
	Amount     float64
	Trigger    string
	SourceNote string
	Confidence Confidence
}

// resolveFeeCap prefers an exact fee schedule entry, then any entry for the
// state, then the rule's per-act maximum. Entries arrive exact matches first,
// so the first usable entry decides between the first two.
func resolveFeeCap(ev evaluation) (FeeCap, bool) {
	for _, entry := range ev.fees {
		if !validAmount(entry.MaxFee) || entry.MaxFee < 0 {
			continue
		}
		feeCap := FeeCap{
			Amount:     entry.MaxFee,
			Confidence: ScoreConfidence(entry.UpdatedAt, entry.EffectiveDate, ev.now),
		}
		if strings.EqualFold(strings.TrimSpace(entry.ActType), ev.act) {
			feeCap.Trigger = fmt.Sprintf("feeSchedules[actType=%q].maxFee=%s", entry.ActType, formatAmount(entry.MaxFee))
			feeCap.SourceNote = fmt.Sprintf("Fee schedule: %s, %s", ev.state, entry.ActType)
		} else {
			feeCap.Trigger = fmt.Sprintf("feeSchedules[stateCode=%s].maxFee=%s", ev.state, formatAmount(entry.MaxFee))
			feeCap.SourceNote = fmt.Sprintf("Fee schedule: %s, %s (closest entry)", ev.state, entry.ActType)
		}
		return feeCap, true
	}

	if ev.rule != nil && ev.rule.MaxFeePerAct != nil && validAmount(*ev.rule.MaxFeePerAct) && *ev.rule.MaxFeePerAct >= 0 {
		amount := *ev.rule.MaxFeePerAct
		return FeeCap{
			Amount:     amount,
			Trigger:    "rule.maxFeePerAct=" + formatAmount(amount),
			SourceNote: ruleSourceNote(ev.rule),
			Confidence: ev.ruleConfidence(),
		}, true
	}
	return FeeCap{}, false
}

// ResolveFeeCap exposes fee cap resolution for callers that need the cap
// itself, such as the session fee heuristic.
func ResolveFeeCap(req Request, ds Dataset, now time.Time) (FeeCap, bool) {
	ev, ok := resolve(req, ds, now)
	if !ok {
		return FeeCap{}, false
	}
	return resolveFeeCap(ev)
}

// Rule 2: fee cap. Exceeding is strictly greater than the cap, compared in
// whole cents.
func checkFeeCap(ev evaluation) (Finding, bool) {
	feeCap, ok := resolveFeeCap(ev)
	if !ok {
		return Finding{}, false
	}

	f := Finding{
		ID:         FindingFeeCap,
		Confidence: feeCap.Confidence,
		SourceNote: feeCap.SourceNote,
	}

	switch {
	case ev.fee != nil && toCents(*ev.fee) > toCents(feeCap.Amount):
		f.Severity = SeverityCritical
		f.Title = "Fee exceeds state limit"
		f.Body = fmt.Sprintf("$%s exceeds $%s, the maximum fee per %s in %s.",
			formatAmount(*ev.fee), formatAmount(feeCap.Amount), ev.act, ev.state)
		f.Debug = ev.debug(fmt.Sprintf("%s; fee=%s", feeCap.Trigger, formatAmount(*ev.fee)))
	case ev.fee != nil:
		f.Severity = SeverityInfo
		f.Title = "Fee within limits"
		f.Body = fmt.Sprintf("$%s is within the $%s maximum per %s in %s.",
			formatAmount(*ev.fee), formatAmount(feeCap.Amount), ev.act, ev.state)
		f.Debug = ev.debug(fmt.Sprintf("%s; fee=%s", feeCap.Trigger, formatAmount(*ev.fee)))
	default:
		f.Severity = SeverityInfo
		f.Title = "Fee within limits"
		f.Body = fmt.Sprintf("Charge no more than $%s per %s in %s.", formatAmount(feeCap.Amount), ev.act, ev.state)
		f.Debug = ev.debug(feeCap.Trigger)
	}
	return f, true
}

// Rule 3: witness requirements.
func checkWitness(ev evaluation) (Finding, bool) {
	if ev.rule == nil {
		return Finding{}, false
	}
	text := strings.TrimSpace(ev.rule.WitnessRequirements)
	if text == "" {
		return Finding{}, false
	}
	return Finding{
		ID:         FindingWitness,
		Severity:   SeverityWarning,
		Title:      "Witness requirements",
		Body:       pstrings.Truncate(text, maxBodyRunes),
		Confidence: ev.ruleConfidence(),
		SourceNote: ruleSourceNote(ev.rule),
		Debug:      ev.debug("rule.witnessRequirements=" + strconv.Quote(pstrings.Truncate(text, 60))),
	}, true
}

// Rule 4: accepted identification.
func checkAcceptedIDs(ev evaluation) (Finding, bool) {
	if ev.ids == nil {
		return Finding{}, false
	}
	types := pstrings.DedupeAndTrim(ev.ids.AcceptedIDTypes)
	if len(types) == 0 {
		return Finding{}, false
	}

	var body strings.Builder
	body.WriteString("Accepted IDs: ")
	body.WriteString(strings.Join(types, ", "))
	body.WriteString(".")
	if ev.ids.ExpirationRequired {
		body.WriteString(" Expiration required.")
	}
	if ev.ids.CredibleWitnessAllowed {
		body.WriteString(" Credible witness allowed.")
	}

	return Finding{
		ID:         FindingAcceptedIDs,
		Severity:   SeverityInfo,
		Title:      "Accepted identification",
		Body:       body.String(),
		Confidence: ScoreConfidence(ev.ids.UpdatedAt, nil, ev.now),
		SourceNote: fmt.Sprintf("ID requirements: %s", ev.state),
		Debug:      ev.debug(fmt.Sprintf("idRequirement.acceptedIdTypes=[%s]", strings.Join(types, ","))),
	}, true
}

// Rule 5: special caveats, falling back to general notes.
func checkCaveats(ev evaluation) (Finding, bool) {
	if ev.rule == nil {
		return Finding{}, false
	}
	field, text := "rule.specialActCaveats", strings.TrimSpace(ev.rule.SpecialActCaveats)
	if text == "" {
		field, text = "rule.notes", strings.TrimSpace(ev.rule.Notes)
	}
	if text == "" {
		return Finding{}, false
	}
	return Finding{
		ID:         FindingCaveats,
		Severity:   SeverityWarning,
		Title:      "Special caveats",
		Body:       pstrings.Truncate(text, maxBodyRunes),
		Confidence: ev.ruleConfidence(),
		SourceNote: ruleSourceNote(ev.rule),
		Debug:      ev.debug(field + "=" + strconv.Quote(pstrings.Truncate(text, 60))),
	}, true
}

// Rule 6: remote online notarization status, only for remote acts.
func checkRON(ev evaluation) (Finding, bool) {
	if ev.rule == nil || !remoteActPattern.MatchString(ev.act) {
		return Finding{}, false
	}

	var body string
	statute := strings.TrimSpace(ev.rule.RONStatute)
	switch {
	case ev.rule.RONPermitted && statute != "":
		body = fmt.Sprintf("Remote online notarization is permitted in %s (%s).", ev.state, statute)
	case ev.rule.RONPermitted:
		body = fmt.Sprintf("Remote online notarization is permitted in %s.", ev.state)
	case statute != "":
		body = fmt.Sprintf("Remote online notarization is not permitted in %s (%s).", ev.state, statute)
	default:
		body = fmt.Sprintf("Remote online notarization is not permitted in %s.", ev.state)
	}

	return Finding{
		ID:         FindingRON,
		Severity:   SeverityInfo,
		Title:      "Remote online notarization",
		Body:       body,
		Confidence: ev.ruleConfidence(),
		SourceNote: ruleSourceNote(ev.rule),
		Debug:      ev.debug(fmt.Sprintf("rule.ronPermitted=%t", ev.rule.RONPermitted)),
	}, true
}

func ruleSourceNote(rule *models.JurisdictionRule) string {
	version := strings.TrimSpace(rule.Version)
	if version == "" {
		return "Published jurisdiction rule (unversioned)"
	}
	return "Published jurisdiction rule v" + version
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// formatAmount renders whole-dollar amounts without decimals ("15") and
// everything else with cents ("15.01").
func formatAmount(v float64) string {
	if toCents(v)%100 == 0 {
		return strconv.FormatInt(toCents(v)/100, 10)
	}
	return strconv.FormatFloat(float64(toCents(v))/100, 'f', 2, 64)
}
