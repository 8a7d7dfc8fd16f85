package gates

// DefaultFeatures is the built-in gate table, in display order.
func DefaultFeatures() []Feature {
	return []Feature{
		{
			Key:         "complianceAdvisor",
			Title:       "Compliance Advisor",
			Description: "State-specific warnings for each notarial act.",
		},
		{
			Key:          "formGuide",
			RequiredPlan: PlanFree,
			Title:        "Form Guide",
			Description:  "Step-by-step checklists for common act types.",
		},
		{
			Key:          "arriveMode",
			RequiredPlan: PlanPro,
			Badge:        "PRO",
			Title:        "Arrive Mode",
			Description:  "On-site checklist with fee and ID reminders.",
		},
		{
			Key:          "aiTrainer",
			RequiredPlan: PlanPro,
			Badge:        "PRO",
			Title:        "AI Trainer",
			Description:  "Practice scenarios grounded in your state's rules.",
		},
		{
			Key:          "mileageExport",
			RequiredPlan: PlanPro,
			AllowedRoles: []Role{RoleOwner, RoleNotary},
			Badge:        "PRO",
			Title:        "Mileage Export",
			Description:  "Export travel logs for tax filing.",
		},
		{
			Key:          "teamDispatch",
			RequiredPlan: PlanAgency,
			AllowedRoles: []Role{RoleOwner, RoleDispatcher},
			Badge:        "AGENCY",
			Title:        "Team Dispatch",
			Description:  "Assign signings across your notary team.",
		},
		{
			Key:          "invoiceBranding",
			RequiredPlan: PlanAgency,
			AllowedRoles: []Role{RoleOwner},
			Badge:        "AGENCY",
			Title:        "Invoice Branding",
			Description:  "Custom logo and terms on client invoices.",
		},
	}
}
