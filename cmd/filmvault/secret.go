// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/auth"
	"github.com/tomtom215/filmvault/internal/config"
)

func newEncryptSecretCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt-secret <value>",
		Short: "Encrypt a credential for config.yaml",
		Long: `Encrypt a credential with a key derived from JWT_SECRET.

The output ("enc:<base64>") can be used as backup.mirror.secret_key; the
server decrypts it at startup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Security.JWTSecret == "" {
				return apperrors.Validation("JWT_SECRET must be set to encrypt secrets")
			}
			sealed, err := config.SealSecret(args[0], cfg.Security.JWTSecret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}
}

func newTokenCmd(env *cliEnv) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Issue an API token",
		Long: `Issue an HS256 bearer token signed with JWT_SECRET.

Roles: admin, producer and viewer. The token expires after SESSION_TIMEOUT.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch role {
			case auth.RoleAdmin, auth.RoleProducer, auth.RoleViewer:
			default:
				return apperrors.Validation("unknown role %q: must be admin, producer or viewer", role)
			}
			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}
			manager, err := auth.NewJWTManager(&cfg.Security)
			if err != nil {
				return err
			}
			token, err := manager.GenerateToken(args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", auth.RoleViewer, "role carried by the token")
	return cmd
}
