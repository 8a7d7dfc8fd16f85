package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notaryfix/internal/jurisdiction/models"
	"notaryfix/internal/jurisdiction/source"
)

func newValidateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <dataset.yaml>",
		Short: "Load a dataset and report dropped records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := source.NewFile(args[0]).Load(cmd.Context())
			if err != nil {
				return err
			}
			clean, rejected := models.Sanitize(raw)

			out := cmd.OutOrStdout()
			loaded, kept := raw.Counts(), clean.Counts()
			fmt.Fprintf(out, "state_rules:     %d loaded, %d kept\n", loaded.Rules, kept.Rules)
			fmt.Fprintf(out, "fee_schedules:   %d loaded, %d kept\n", loaded.FeeSchedules, kept.FeeSchedules)
			fmt.Fprintf(out, "id_requirements: %d loaded, %d kept\n", loaded.IDRequirements, kept.IDRequirements)
			for _, r := range rejected {
				fmt.Fprintf(out, "rejected %s\n", r)
			}
			if strict && len(rejected) > 0 {
				return fmt.Errorf("%d records rejected", len(rejected))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any record is rejected")
	return cmd
}
