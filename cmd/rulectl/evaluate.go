package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"notaryfix/internal/compliance"
	compliancehandler "notaryfix/internal/compliance/handler"
	"notaryfix/internal/jurisdiction/models"
	"notaryfix/internal/jurisdiction/source"
	"notaryfix/internal/jurisdiction/store"
	"notaryfix/pkg/requestcontext"
)

func newEvaluateCmd() *cobra.Command {
	var (
		datasetPath  string
		state        string
		act          string
		fee          float64
		sessionTotal float64
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the compliance checks for one act",
		Long: `Evaluate one notarial act against a dataset and print the report as JSON.
Without --dataset only built-in rules apply.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			holder := store.NewHolder()
			if datasetPath != "" {
				raw, err := source.NewFile(datasetPath).Load(ctx)
				if err != nil {
					return err
				}
				clean, _ := models.Sanitize(raw)
				holder.Replace(clean, requestcontext.Now(ctx))
			}

			req := compliance.Request{StateCode: state, ActType: act}
			if cmd.Flags().Changed("fee") {
				req.Fee = &fee
			}
			if cmd.Flags().Changed("session-total") {
				req.Context.SessionTotal = &sessionTotal
			}
			req.Context.Caller = "rulectl"

			svc := compliance.NewService(compliance.HolderProvider(holder),
				compliance.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
			report, err := svc.Evaluate(ctx, req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), compliancehandler.FromReport(report))
		},
	}
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to a YAML dataset")
	cmd.Flags().StringVar(&state, "state", "", "two-letter state code")
	cmd.Flags().StringVar(&act, "act", "", "act type, e.g. Acknowledgment")
	cmd.Flags().Float64Var(&fee, "fee", 0, "fee charged for the act")
	cmd.Flags().Float64Var(&sessionTotal, "session-total", 0, "total charged for the signing session")
	return cmd
}
