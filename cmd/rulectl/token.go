package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "notaryfix/internal/jwt_token"
	"notaryfix/internal/platform/config"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		plan   string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		Long:  "Mint a bearer token signed with JWT_SIGNING_KEY, using the same issuer and audience as the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			svc := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
			token, err := svc.GenerateAccessToken(userID, plan, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "local-user", "user id claim")
	cmd.Flags().StringVar(&plan, "plan", "free", "plan tier claim")
	cmd.Flags().StringVar(&role, "role", "notary", "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
