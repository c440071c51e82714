package main

import (
	"fmt"
	"time"

	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/infra/db"
	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/pkg/jwt"
	"refund-settlement-engine/migrations"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL schema to the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := migrations.Names()
			if err != nil {
				return err
			}
			if dryRun {
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			pool, cleanup, err := db.Connect(cfg.DB)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := migrations.Apply(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(names))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list migrations without applying them")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var userID, role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := user.NewRole(role)
			if err != nil {
				return fmt.Errorf("--role: %w", err)
			}
			id := uuid.New()
			if userID != "" {
				if id, err = uuid.Parse(userID); err != nil {
					return fmt.Errorf("--user: %w", err)
				}
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if ttl == 0 {
				if ttl, err = time.ParseDuration(cfg.JWT.Duration); err != nil {
					return fmt.Errorf("JWT_DURATION: %w", err)
				}
			}

			token, err := jwt.NewService(cfg.JWT.Secret, ttl).GenerateToken(id, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (random when empty)")
	cmd.Flags().StringVar(&role, "role", string(user.RoleUser), "user, owner or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_DURATION)")
	return cmd
}
