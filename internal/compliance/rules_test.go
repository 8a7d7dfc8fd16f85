package compliance

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaryfix/internal/jurisdiction/models"
	"notaryfix/internal/jurisdiction/store"
)

var evalNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := evalNow.AddDate(0, 0, -n)
	return &t
}

func ptr[T any](v T) *T { return &v }

func ids(findings []Finding) []FindingID {
	out := make([]FindingID, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.ID)
	}
	return out
}

func TestEvaluateDeedOfTrustExample(t *testing.T) {
	ds := store.NewSnapshot(models.Dataset{Rules: []models.JurisdictionRule{{
		StateCode:          "CA",
		Status:             models.RuleStatusActive,
		ThumbprintRequired: true,
		MaxFeePerAct:       ptr(15.0),
		UpdatedAt:          daysAgo(40),
	}}})

	got := Evaluate(Request{StateCode: "CA", ActType: "Deed of Trust", Fee: ptr(20.0)}, ds, evalNow)

	high := Confidence{Score: 0.90, Label: ConfidenceHigh, FromDataset: true}
	want := []Finding{
		{
			ID:         FindingThumbprint,
			Severity:   SeverityCritical,
			Title:      "Thumbprint required",
			Body:       "CA requires the signer's thumbprint in your journal for Deed of Trust.",
			Confidence: high,
			SourceNote: "Published jurisdiction rule (unversioned)",
			Debug:      Debug{StateCode: "CA", ActType: "Deed of Trust", Trigger: "rule.thumbprintRequired=true"},
		},
		{
			ID:         FindingFeeCap,
			Severity:   SeverityCritical,
			Title:      "Fee exceeds state limit",
			Body:       "$20 exceeds $15, the maximum fee per Deed of Trust in CA.",
			Confidence: high,
			SourceNote: "Published jurisdiction rule (unversioned)",
			Debug:      Debug{StateCode: "CA", ActType: "Deed of Trust", Trigger: "rule.maxFeePerAct=15; fee=20"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateEmptyInputIsNoop(t *testing.T) {
	ds := store.NewSnapshot(models.Dataset{Rules: []models.JurisdictionRule{{
		StateCode: "CA", Status: models.RuleStatusActive, ThumbprintRequired: true,
	}}})

	for name, req := range map[string]Request{
		"empty state":        {ActType: "Deed of Trust"},
		"empty act":          {StateCode: "CA"},
		"whitespace state":   {StateCode: "  ", ActType: "Deed"},
		"whitespace act":     {StateCode: "CA", ActType: "\t"},
		"unrecognized state": {StateCode: "California", ActType: "Deed"},
	} {
		t.Run(name, func(t *testing.T) {
			got := Evaluate(req, ds, evalNow)
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestEvaluateFeeCapBoundary(t *testing.T) {
	ds := store.NewSnapshot(models.Dataset{FeeSchedules: []models.FeeScheduleEntry{{
		StateCode: "TX", ActType: "Acknowledgment", MaxFee: 15, UpdatedAt: daysAgo(10),
	}}})

	tests := []struct {
		name     string
		fee      *float64
		severity Severity
		title    string
	}{
		{name: "equal to cap is within limits", fee: ptr(15.0), severity: SeverityInfo, title: "Fee within limits"},
		{name: "one cent over is critical", fee: ptr(15.01), severity: SeverityCritical, title: "Fee exceeds state limit"},
		{name: "under cap is within limits", fee: ptr(5.0), severity: SeverityInfo, title: "Fee within limits"},
		{name: "no fee reports the cap", fee: nil, severity: SeverityInfo, title: "Fee within limits"},
		{name: "sub-cent overage rounds to the cap", fee: ptr(15.004), severity: SeverityInfo, title: "Fee within limits"},
		{name: "overage rounding up to a cent is critical", fee: ptr(15.006), severity: SeverityCritical, title: "Fee exceeds state limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(Request{StateCode: "TX", ActType: "Acknowledgment", Fee: tt.fee}, ds, evalNow)
			require.Len(t, got, 1)
			assert.Equal(t, FindingFeeCap, got[0].ID)
			assert.Equal(t, tt.severity, got[0].Severity)
			assert.Equal(t, tt.title, got[0].Title)
		})
	}

	t.Run("over cap message formats cents", func(t *testing.T) {
		got := Evaluate(Request{StateCode: "TX", ActType: "Acknowledgment", Fee: ptr(15.01)}, ds, evalNow)
		require.Len(t, got, 1)
		assert.Equal(t, "$15.01 exceeds $15, the maximum fee per Acknowledgment in TX.", got[0].Body)
	})
}

func TestEvaluateFeeCapResolution(t *testing.T) {
	rule := models.JurisdictionRule{StateCode: "FL", Status: models.RuleStatusActive, MaxFeePerAct: ptr(10.0), Version: "3"}

	t.Run("exact fee entry beats state entry and rule", func(t *testing.T) {
		ds := store.NewSnapshot(models.Dataset{
			Rules: []models.JurisdictionRule{rule},
			FeeSchedules: []models.FeeScheduleEntry{
				{StateCode: "FL", ActType: "Jurat", MaxFee: 5},
				{StateCode: "FL", ActType: "Oath", MaxFee: 7},
			},
		})
		got := Evaluate(Request{StateCode: "FL", ActType: "oath", Fee: ptr(8.0)}, ds, evalNow)
		require.Len(t, got, 1)
		assert.Equal(t, SeverityCritical, got[0].Severity)
		assert.Equal(t, `feeSchedules[actType="Oath"].maxFee=7; fee=8`, got[0].Debug.Trigger)
		assert.Equal(t, "Fee schedule: FL, Oath", got[0].SourceNote)
	})

	t.Run("any state entry beats rule", func(t *testing.T) {
		ds := store.NewSnapshot(models.Dataset{
			Rules:        []models.JurisdictionRule{rule},
			FeeSchedules: []models.FeeScheduleEntry{{StateCode: "FL", ActType: "Jurat", MaxFee: 5}},
		})
		got := Evaluate(Request{StateCode: "FL", ActType: "Oath", Fee: ptr(6.0)}, ds, evalNow)
		require.Len(t, got, 1)
		assert.Equal(t, SeverityCritical, got[0].Severity)
		assert.Equal(t, "feeSchedules[stateCode=FL].maxFee=5; fee=6", got[0].Debug.Trigger)
	})

	t.Run("rule max fee is last resort", func(t *testing.T) {
		ds := store.NewSnapshot(models.Dataset{Rules: []models.JurisdictionRule{rule}})
		got := Evaluate(Request{StateCode: "FL", ActType: "Oath", Fee: ptr(10.0)}, ds, evalNow)
		require.Len(t, got, 1)
		assert.Equal(t, SeverityInfo, got[0].Severity)
		assert.Equal(t, "Published jurisdiction rule v3", got[0].SourceNote)
		assert.Equal(t, StaticConfidence(), got[0].Confidence)
	})

	t.Run("no cap skips the finding", func(t *testing.T) {
		ds := store.NewSnapshot(models.Dataset{Rules: []models.JurisdictionRule{
			{StateCode: "FL", Status: models.RuleStatusActive},
		}})
		got := Evaluate(Request{StateCode: "FL", ActType: "Oath", Fee: ptr(1000.0)}, ds, evalNow)
		assert.Empty(t, got)
	})
}

func TestEvaluateArchivedRuleExcluded(t *testing.T) {
	ds := store.NewSnapshot(models.Dataset{Rules: []models.JurisdictionRule{{
		StateCode:           "NV",
		Status:              models.RuleStatusArchived,
		ThumbprintRequired:  true,
		WitnessRequirements: "Two witnesses",
		MaxFeePerAct:        ptr(1.0),
		PublishedAt:         daysAgo(1),
	}}})

	got := Evaluate(Request{StateCode: "NV", ActType: "Deed", Fee: ptr(50.0)}, ds, evalNow)
	assert.Empty(t, got)
}

func TestEvaluateCheckOrder(t *testing.T) {
	ds := store.NewSnapshot(models.Dataset{
		Rules: []models.JurisdictionRule{{
			StateCode:           "VA",
			Status:              models.RuleStatusActive,
			ThumbprintRequired:  true,
			MaxFeePerAct:        ptr(25.0),
			WitnessRequirements: "One credible witness",
			SpecialActCaveats:   "Electronic seals must be registered.",
			RONPermitted:        true,
			RONStatute:          "Va. Code § 47.1-6.1",
			Version:             "2026.1",
			UpdatedAt:           daysAgo(500),
		}},
		IDRequirements: []models.IDRequirement{{
			StateCode:              "VA",
			AcceptedIDTypes:        []string{"Driver License", "Passport", "passport"},
			ExpirationRequired:     true,
			CredibleWitnessAllowed: true,
			UpdatedAt:              daysAgo(800),
		}},
	})

	got := Evaluate(Request{StateCode: "va", ActType: "Remote Acknowledgment"}, ds, evalNow)

	want := []FindingID{FindingThumbprint, FindingFeeCap, FindingWitness, FindingAcceptedIDs, FindingCaveats, FindingRON}
	if diff := cmp.Diff(want, ids(got)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, SeverityWarning, got[2].Severity)
	assert.Equal(t, "Accepted IDs: Driver License, Passport. Expiration required. Credible witness allowed.", got[3].Body)
	assert.Equal(t, ConfidenceMedium, got[3].Confidence.Label)
	assert.InDelta(t, 0.60, got[3].Confidence.Score, 1e-9)
	assert.Equal(t, "rule.specialActCaveats=\"Electronic seals must be registered.\"", got[4].Debug.Trigger)
	assert.Equal(t, "Published jurisdiction rule v2026.1", got[4].SourceNote)
	assert.Equal(t, "Remote online notarization is permitted in VA (Va. Code § 47.1-6.1).", got[5].Body)
	assert.Equal(t, "rule.ronPermitted=true", got[5].Debug.Trigger)
	for _, f := range got {
		assert.Equal(t, "VA", f.Debug.StateCode)
		assert.Equal(t, "Remote Acknowledgment", f.Debug.ActType)
	}
}

func TestEvaluateCaveatsFallBackToNotes(t *testing.T) {
	ds := store.NewSnapshot(models.Dataset{Rules: []models.JurisdictionRule{{
		StateCode: "OR", Status: models.RuleStatusActive, Notes: "Journal required for all acts.",
	}}})

	got := Evaluate(Request{StateCode: "OR", ActType: "Jurat"}, ds, evalNow)
	require.Len(t, got, 1)
	assert.Equal(t, FindingCaveats, got[0].ID)
	assert.Equal(t, "Journal required for all acts.", got[0].Body)
	assert.True(t, strings.HasPrefix(got[0].Debug.Trigger, "rule.notes="))
}

func TestEvaluateRONMatching(t *testing.T) {
	ds := store.NewSnapshot(models.Dataset{Rules: []models.JurisdictionRule{{
		StateCode: "NY", Status: models.RuleStatusActive,
	}}})

	tests := []struct {
		act  string
		want bool
	}{
		{act: "RON Acknowledgment", want: true},
		{act: "remote oath", want: true},
		{act: "Electronic Jurat", want: true},
		{act: "Environmental Affidavit", want: false},
		{act: "Ronald Trust Certification", want: false},
		{act: "Acknowledgment (RON)", want: true},
		{act: "Acknowledgment", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.act, func(t *testing.T) {
			got := Evaluate(Request{StateCode: "NY", ActType: tt.act}, ds, evalNow)
			if !tt.want {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, FindingRON, got[0].ID)
			assert.Equal(t, "Remote online notarization is not permitted in NY.", got[0].Body)
			assert.Equal(t, "rule.ronPermitted=false", got[0].Debug.Trigger)
		})
	}

	t.Run("no rule means no ron finding", func(t *testing.T) {
		assert.Empty(t, Evaluate(Request{StateCode: "NJ", ActType: "Remote Oath"}, ds, evalNow))
	})
}

func TestEvaluateTruncation(t *testing.T) {
	long := strings.Repeat("w", 400)
	exact := strings.Repeat("é", 250)
	ds := store.NewSnapshot(models.Dataset{Rules: []models.JurisdictionRule{
		{StateCode: "WA", Status: models.RuleStatusActive, WitnessRequirements: long, SpecialActCaveats: exact},
	}})

	got := Evaluate(Request{StateCode: "WA", ActType: "Jurat"}, ds, evalNow)
	require.Equal(t, []FindingID{FindingWitness, FindingCaveats}, ids(got))

	assert.Equal(t, strings.Repeat("w", 250)+"…", got[0].Body)
	assert.Equal(t, 251, utf8.RuneCountInString(got[0].Body))
	assert.Equal(t, exact, got[1].Body, "text at the limit is unchanged")
}

func TestEvaluateBuiltinFallback(t *testing.T) {
	t.Run("nil dataset uses built-in thumbprint table", func(t *testing.T) {
		got := Evaluate(Request{StateCode: "ca", ActType: "grant deed", Fee: ptr(100.0)}, nil, evalNow)
		require.Len(t, got, 1)
		assert.Equal(t, FindingThumbprint, got[0].ID)
		assert.Equal(t, StaticConfidence(), got[0].Confidence)
		assert.Equal(t, "Built-in rule table", got[0].SourceNote)
		assert.Equal(t, "builtinThumbprint[CA|grant deed]=true", got[0].Debug.Trigger)
	})

	t.Run("rule without flag still gets built-in thumbprint", func(t *testing.T) {
		ds := store.NewSnapshot(models.Dataset{Rules: []models.JurisdictionRule{
			{StateCode: "CA", Status: models.RuleStatusActive, UpdatedAt: daysAgo(1)},
		}})
		got := Evaluate(Request{StateCode: "CA", ActType: "Deed"}, ds, evalNow)
		require.Len(t, got, 1)
		assert.False(t, got[0].Confidence.FromDataset)
	})

	t.Run("other acts have no built-in guidance", func(t *testing.T) {
		assert.Empty(t, Evaluate(Request{StateCode: "CA", ActType: "Jurat"}, nil, evalNow))
	})
}

func TestEvaluateDeterministic(t *testing.T) {
	ds := store.NewSnapshot(models.Dataset{
		Rules: []models.JurisdictionRule{{
			StateCode: "AZ", Status: models.RuleStatusActive, ThumbprintRequired: true,
			MaxFeePerAct: ptr(10.0), WitnessRequirements: "None", Notes: "Keep a journal.", UpdatedAt: daysAgo(400),
		}},
		IDRequirements: []models.IDRequirement{{StateCode: "AZ", AcceptedIDTypes: []string{"Passport"}}},
	})
	req := Request{StateCode: "AZ", ActType: "Electronic Deed", Fee: ptr(12.5)}

	first := Evaluate(req, ds, evalNow)
	for range 20 {
		if diff := cmp.Diff(first, Evaluate(req, ds, evalNow)); diff != "" {
			t.Fatalf("evaluation not deterministic (-first +next):\n%s", diff)
		}
	}
}

func TestEvaluateSkipsMalformedData(t *testing.T) {
	ds := store.NewSnapshot(models.Dataset{
		FeeSchedules:   []models.FeeScheduleEntry{{StateCode: "ID", ActType: "Oath", MaxFee: -3}},
		Rules:          []models.JurisdictionRule{{StateCode: "ID", Status: models.RuleStatusActive, MaxFeePerAct: ptr(-1.0)}},
		IDRequirements: []models.IDRequirement{{StateCode: "ID", AcceptedIDTypes: []string{" ", ""}}},
	})

	assert.NotPanics(t, func() {
		got := Evaluate(Request{StateCode: "ID", ActType: "Oath", Fee: ptr(5.0)}, ds, evalNow)
		assert.Empty(t, got)
	})
}
