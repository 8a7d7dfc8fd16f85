package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSanitize(t *testing.T) {
	in := Dataset{
		Rules: []JurisdictionRule{
			{StateCode: "ca", Status: "Active", MaxFeePerAct: ptr(15.0)},
			{StateCode: "California", Status: RuleStatusActive},
			{StateCode: "NY", Status: "retired"},
			{StateCode: "TX"},
			{StateCode: "FL", MaxFeePerAct: ptr(math.NaN())},
		},
		FeeSchedules: []FeeScheduleEntry{
			{StateCode: "ca", ActType: " Jurat ", MaxFee: 15},
			{StateCode: "CA", ActType: "Deed", MaxFee: -1},
		},
		IDRequirements: []IDRequirement{
			{StateCode: "ca", AcceptedIDTypes: []string{" Passport", "Passport", "", "Driver License"}},
		},
	}

	out, rejected := Sanitize(in)

	require.Len(t, out.Rules, 3)
	assert.Equal(t, "CA", out.Rules[0].StateCode.String())
	assert.Equal(t, RuleStatusActive, out.Rules[0].Status)
	assert.Equal(t, RuleStatusActive, out.Rules[1].Status, "missing status defaults to active")
	assert.Nil(t, out.Rules[2].MaxFeePerAct, "NaN cap is dropped but the rule is kept")

	require.Len(t, out.FeeSchedules, 1)
	assert.Equal(t, "Jurat", out.FeeSchedules[0].ActType)

	require.Len(t, out.IDRequirements, 1)
	assert.Equal(t, []string{"Passport", "Driver License"}, out.IDRequirements[0].AcceptedIDTypes)

	assert.Len(t, rejected, 4)
	assert.Equal(t, Counts{Rules: 3, FeeSchedules: 1, IDRequirements: 1}, out.Counts())
}
