package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notaryfix/internal/gates"
	gateshandler "notaryfix/internal/gates/handler"
)

func newGateCmd() *cobra.Command {
	var (
		feature     string
		plan        string
		role        string
		fallback    string
		adminBypass bool
	)
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Decide one feature gate for a plan and role",
		Long:  "Decide one feature gate, or every gate when --feature is empty, and print the decisions as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []gates.Option{gates.WithAdminBypass(adminBypass)}
			if fallback != "" {
				r, ok := gates.ParseRole(fallback)
				if !ok {
					return fmt.Errorf("unknown fallback role %q", fallback)
				}
				opts = append(opts, gates.WithUnknownRoleFallback(r))
			}
			eval := gates.New(opts...)
			subject := gates.Subject{PlanTier: plan, Role: role}
			if feature == "" {
				return writeJSON(cmd.OutOrStdout(), gateshandler.FromDecisions(eval.EvaluateAll(subject)))
			}
			return writeJSON(cmd.OutOrStdout(), gateshandler.FromDecision(eval.Evaluate(feature, subject)))
		},
	}
	cmd.Flags().StringVar(&feature, "feature", "", "feature key, e.g. arriveMode")
	cmd.Flags().StringVar(&plan, "plan", "free", "plan tier")
	cmd.Flags().StringVar(&role, "role", "notary", "user role")
	cmd.Flags().StringVar(&fallback, "fallback", "", "role that unknown roles normalize to")
	cmd.Flags().BoolVar(&adminBypass, "admin-bypass", true, "allow admin every feature")
	return cmd
}
