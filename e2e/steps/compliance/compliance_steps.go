package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers evaluation and guidance steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &complianceSteps{tc: tc}

	ctx.Step(`^I evaluate an? "([^"]*)" in "([^"]*)"$`, steps.evaluate)
	ctx.Step(`^I evaluate an? "([^"]*)" in "([^"]*)" with fee ([0-9.]+)$`, steps.evaluateWithFee)
	ctx.Step(`^I evaluate an? "([^"]*)" in "([^"]*)" with session total ([0-9.]+)$`, steps.evaluateWithSessionTotal)
	ctx.Step(`^I submit the evaluation:$`, steps.submitEvaluation)
	ctx.Step(`^I request guidance for "([^"]*)"$`, steps.requestGuidance)

	ctx.Step(`^the findings should be "([^"]*)"$`, steps.findingsShouldBe)
	ctx.Step(`^there should be no findings$`, steps.noFindings)
}

type complianceSteps struct {
	tc TestContext
}

func (s *complianceSteps) evaluate(ctx context.Context, act, state string) error {
	return s.tc.POST("/v1/compliance/evaluate", map[string]interface{}{
		"state_code": state,
		"act_type":   act,
	})
}

func (s *complianceSteps) evaluateWithFee(ctx context.Context, act, state, fee string) error {
	amount, err := strconv.ParseFloat(fee, 64)
	if err != nil {
		return err
	}
	return s.tc.POST("/v1/compliance/evaluate", map[string]interface{}{
		"state_code": state,
		"act_type":   act,
		"fee":        amount,
	})
}

func (s *complianceSteps) evaluateWithSessionTotal(ctx context.Context, act, state, total string) error {
	amount, err := strconv.ParseFloat(total, 64)
	if err != nil {
		return err
	}
	return s.tc.POST("/v1/compliance/evaluate", map[string]interface{}{
		"state_code": state,
		"act_type":   act,
		"context":    map[string]interface{}{"session_total": amount},
	})
}

func (s *complianceSteps) submitEvaluation(ctx context.Context, body *godog.DocString) error {
	return s.tc.POST("/v1/compliance/evaluate", json.RawMessage(body.Content))
}

func (s *complianceSteps) requestGuidance(ctx context.Context, state string) error {
	return s.tc.GET("/v1/jurisdictions/"+state, nil)
}

func (s *complianceSteps) findingIDs() ([]string, error) {
	v, err := s.tc.GetResponseField("findings")
	if err != nil {
		return nil, err
	}
	findings, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("findings is %T, not a list", v)
	}
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		m, ok := f.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("finding is %T, not an object", f)
		}
		ids = append(ids, fmt.Sprint(m["id"]))
	}
	return ids, nil
}

func (s *complianceSteps) findingsShouldBe(ctx context.Context, expected string) error {
	ids, err := s.findingIDs()
	if err != nil {
		return err
	}
	if got := strings.Join(ids, ","); got != expected {
		return fmt.Errorf("expected findings %q, got %q", expected, got)
	}
	return nil
}

func (s *complianceSteps) noFindings(ctx context.Context) error {
	ids, err := s.findingIDs()
	if err != nil {
		return err
	}
	if len(ids) != 0 {
		return fmt.Errorf("expected no findings, got %v", ids)
	}
	return nil
}
