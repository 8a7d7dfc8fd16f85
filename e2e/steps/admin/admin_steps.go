package admin

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	AdminPOST(path string) error
	AdminGET(path string) error
	GetResponseField(field string) (interface{}, error)
	WriteDataset(content string) error
}

// RegisterSteps registers dataset administration steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^the dataset file is replaced with:$`, steps.replaceDataset)
	ctx.Step(`^I reload the dataset as admin$`, steps.reloadAsAdmin)
	ctx.Step(`^I reload the dataset without the admin token$`, steps.reloadWithoutToken)
	ctx.Step(`^I request the dataset status as admin$`, steps.datasetStatus)
	ctx.Step(`^I list audit events for "([^"]*)" as admin$`, steps.listAuditEvents)

	ctx.Step(`^the audit events should include "([^"]*)"$`, steps.auditEventsShouldInclude)
}

type adminSteps struct {
	tc TestContext
}

func (s *adminSteps) replaceDataset(ctx context.Context, doc *godog.DocString) error {
	return s.tc.WriteDataset(doc.Content)
}

func (s *adminSteps) reloadAsAdmin(ctx context.Context) error {
	return s.tc.AdminPOST("/admin/dataset/reload")
}

func (s *adminSteps) reloadWithoutToken(ctx context.Context) error {
	return s.tc.POST("/admin/dataset/reload", nil)
}

func (s *adminSteps) datasetStatus(ctx context.Context) error {
	return s.tc.AdminGET("/admin/dataset")
}

func (s *adminSteps) listAuditEvents(ctx context.Context, subject string) error {
	return s.tc.AdminGET("/admin/audit?subject=" + subject)
}

func (s *adminSteps) auditEventsShouldInclude(ctx context.Context, action string) error {
	v, err := s.tc.GetResponseField("events")
	if err != nil {
		return err
	}
	events, _ := v.([]interface{})
	for _, item := range events {
		event, _ := item.(map[string]interface{})
		if event["action"] == action {
			return nil
		}
	}
	return fmt.Errorf("no %q event among %d events", action, len(events))
}
