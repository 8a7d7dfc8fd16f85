package e2e

import (
	"github.com/cucumber/godog"

	"notaryfix/e2e/steps/admin"
	"notaryfix/e2e/steps/common"
	"notaryfix/e2e/steps/compliance"
	"notaryfix/e2e/steps/gates"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	compliance.RegisterSteps(ctx, tc)
	gates.RegisterSteps(ctx, tc)
	admin.RegisterSteps(ctx, tc)
}
