package gates

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	IssueAccessToken(userID, planTier, role string) error
	SetAccessToken(token string)
}

// RegisterSteps registers feature gate steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &gatesSteps{tc: tc}

	ctx.Step(`^I am signed in as "([^"]*)" with role "([^"]*)" on the "([^"]*)" plan$`, steps.signedIn)
	ctx.Step(`^I am signed in with token "([^"]*)"$`, steps.signedInWithToken)
	ctx.Step(`^I check the "([^"]*)" feature$`, steps.checkFeature)
	ctx.Step(`^I list the feature gates$`, steps.listGates)

	ctx.Step(`^the feature should be (allowed|denied)$`, steps.featureShouldBe)
	ctx.Step(`^the gate "([^"]*)" should be (allowed|denied)$`, steps.gateShouldBe)
}

type gatesSteps struct {
	tc TestContext
}

func (s *gatesSteps) signedIn(ctx context.Context, userID, role, plan string) error {
	return s.tc.IssueAccessToken(userID, plan, role)
}

func (s *gatesSteps) signedInWithToken(ctx context.Context, token string) error {
	s.tc.SetAccessToken(token)
	return nil
}

func (s *gatesSteps) checkFeature(ctx context.Context, key string) error {
	return s.tc.GET("/v1/gates/"+key, nil)
}

func (s *gatesSteps) listGates(ctx context.Context) error {
	return s.tc.GET("/v1/gates", nil)
}

func (s *gatesSteps) featureShouldBe(ctx context.Context, outcome string) error {
	v, err := s.tc.GetResponseField("allowed")
	if err != nil {
		return err
	}
	if allowed, _ := v.(bool); allowed != (outcome == "allowed") {
		return fmt.Errorf("expected feature to be %s", outcome)
	}
	return nil
}

func (s *gatesSteps) gateShouldBe(ctx context.Context, key, outcome string) error {
	v, err := s.tc.GetResponseField("gates")
	if err != nil {
		return err
	}
	list, _ := v.([]interface{})
	for _, item := range list {
		gate, _ := item.(map[string]interface{})
		if gate["feature_key"] != key {
			continue
		}
		if allowed, _ := gate["allowed"].(bool); allowed != (outcome == "allowed") {
			return fmt.Errorf("expected gate %s to be %s", key, outcome)
		}
		return nil
	}
	return fmt.Errorf("gate %s not listed", key)
}
