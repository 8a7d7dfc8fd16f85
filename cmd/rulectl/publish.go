package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"notaryfix/internal/jurisdiction/models"
	"notaryfix/internal/jurisdiction/source"
	"notaryfix/internal/platform/postgres"
)

func newPublishCmd() *cobra.Command {
	var (
		databaseURL string
		migrate     bool
		strict      bool
	)
	cmd := &cobra.Command{
		Use:   "publish <dataset.yaml>",
		Short: "Replace the dataset stored in Postgres",
		Long: `Validate a YAML dataset and replace the Postgres dataset tables with it in
one transaction. Servers pick the change up on their next refresh or on an
admin reload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			ctx := cmd.Context()

			raw, err := source.NewFile(args[0]).Load(ctx)
			if err != nil {
				return err
			}
			clean, rejected := models.Sanitize(raw)
			out := cmd.OutOrStdout()
			for _, r := range rejected {
				fmt.Fprintf(out, "rejected %s\n", r)
			}
			if strict && len(rejected) > 0 {
				return fmt.Errorf("%d records rejected", len(rejected))
			}

			pool, err := postgres.Connect(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			if migrate {
				if err := postgres.Migrate(ctx, pool, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
					return err
				}
			}
			if err := source.NewPostgres(pool).Publish(ctx, clean); err != nil {
				return err
			}

			counts := clean.Counts()
			fmt.Fprintf(out, "published %d state_rules, %d fee_schedules, %d id_requirements\n",
				counts.Rules, counts.FeeSchedules, counts.IDRequirements)
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply schema migrations first")
	cmd.Flags().BoolVar(&strict, "strict", false, "refuse to publish when any record is rejected")
	return cmd
}
