package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rulectl",
		Short: "Inspect notary jurisdiction datasets",
		Long: `rulectl works against a YAML jurisdiction dataset on disk.

Available subcommands:
  validate - Load a dataset and report dropped records
  publish  - Replace the dataset stored in Postgres
  evaluate - Run the compliance checks for one act
  gate     - Decide one feature gate for a plan and role
  token    - Mint a bearer token for local testing`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newValidateCmd(),
		newPublishCmd(),
		newEvaluateCmd(),
		newGateCmd(),
		newTokenCmd(),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
