package e2e

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"
	"github.com/prometheus/client_golang/prometheus"

	"notaryfix/internal/admin"
	"notaryfix/internal/compliance"
	compliancehandler "notaryfix/internal/compliance/handler"
	compliancemetrics "notaryfix/internal/compliance/metrics"
	"notaryfix/internal/gates"
	gateshandler "notaryfix/internal/gates/handler"
	gatesmetrics "notaryfix/internal/gates/metrics"
	"notaryfix/internal/jurisdiction"
	jurisdictionmetrics "notaryfix/internal/jurisdiction/metrics"
	"notaryfix/internal/jurisdiction/source"
	"notaryfix/internal/jurisdiction/store"
	jwttoken "notaryfix/internal/jwt_token"
	"notaryfix/internal/platform/metrics"
	httptransport "notaryfix/internal/transport/http"
	"notaryfix/pkg/platform/audit/publisher"
	"notaryfix/pkg/platform/audit/store/memory"
	adminmw "notaryfix/pkg/platform/middleware/admin"
	"notaryfix/pkg/platform/middleware/auth"
	"notaryfix/pkg/requestcontext"
)

const (
	adminToken = "e2e-admin-token"
	signingKey = "e2e-signing-key"
)

const baseDataset = `state_rules:
  - state_code: CA
    status: active
    thumbprint_required: true
    max_fee_per_act: 15
    ron_permitted: true
    version: "2025.1"
    published_at: 2025-01-15T00:00:00Z
    updated_at: 2025-01-15T00:00:00Z
fee_schedules:
  - state_code: TX
    act_type: Jurat
    max_fee: 6
`

// harness runs the full router in process against a YAML dataset in a temp
// dir. Set E2E_BASE_URL to run the scenarios against a deployed server.
type harness struct {
	tc        *TestContext
	refresher *jurisdiction.Refresher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tokens := jwttoken.NewJWTService(signingKey, "notaryfix", "notaryfix-api")

	if base := os.Getenv("E2E_BASE_URL"); base != "" {
		return &harness{tc: &TestContext{
			BaseURL:    base,
			AdminToken: os.Getenv("E2E_ADMIN_TOKEN"),
			Tokens:     jwttoken.NewJWTService(os.Getenv("JWT_SIGNING_KEY"), "notaryfix", "notaryfix-api"),
		}}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	datasetPath := filepath.Join(t.TempDir(), "dataset.yaml")

	auditor := publisher.NewPublisher(memory.NewInMemoryStore(), publisher.WithLogger(logger))
	holder := store.NewHolder()
	refresher := jurisdiction.NewRefresher(source.NewFile(datasetPath), holder,
		jurisdiction.WithLogger(logger),
		jurisdiction.WithMetrics(jurisdictionmetrics.NewWithRegisterer(reg)),
		jurisdiction.WithAuditor(auditor),
	)

	complianceSvc := compliance.NewService(compliance.HolderProvider(holder),
		compliance.WithAuditor(auditor),
		compliance.WithLogger(logger),
		compliance.WithMetrics(compliancemetrics.NewWithRegisterer(reg)),
	)
	defaults := requestcontext.Subject{PlanTier: "free", Role: "notary"}
	gatesSvc := gates.NewService(gates.New(gates.WithUnknownRoleFallback(gates.RoleNotary)),
		gates.WithDefaultSubject(gates.Subject{PlanTier: defaults.PlanTier, Role: defaults.Role}),
		gates.WithAuditPublisher(auditor),
		gates.WithServiceLogger(logger),
		gates.WithServiceMetrics(gatesmetrics.NewWithRegisterer(reg)),
	)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:     logger,
		Metrics:    metrics.NewWithRegisterer(reg),
		Principal:  auth.Principal(jwttoken.NewJWTServiceAdapter(tokens), defaults, logger),
		AdminGuard: adminmw.RequireAdminToken(adminToken, auditor, logger),
		Public: []httptransport.Registrar{
			compliancehandler.New(complianceSvc, logger, ""),
			gateshandler.New(gatesSvc, logger),
		},
		Admin: []httptransport.Registrar{
			admin.New(refresher, holder, auditor, logger),
		},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &harness{
		tc: &TestContext{
			BaseURL:     srv.URL,
			AdminToken:  adminToken,
			DatasetPath: datasetPath,
			Tokens:      tokens,
			Client:      srv.Client(),
		},
		refresher: refresher,
	}
}

// reset restores the base dataset before each scenario.
func (h *harness) reset(ctx context.Context) error {
	h.tc.Reset()
	if h.refresher == nil {
		return nil
	}
	if err := h.tc.WriteDataset(baseDataset); err != nil {
		return err
	}
	_, err := h.refresher.Reload(ctx)
	return err
}

func TestFeatures(t *testing.T) {
	h := newHarness(t)

	suite := godog.TestSuite{
		Name: "notaryfix",
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				return ctx, h.reset(ctx)
			})
			RegisterSteps(ctx, h.tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
