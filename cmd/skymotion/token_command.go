package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SLASHOO/SkyMotion-Library/internal/auth"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "token <member-id>",
		Short: "Issue a member token signed with SKYMOTION_TOKEN_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.TokenSecret == "" {
				return errors.New("SKYMOTION_TOKEN_SECRET is required")
			}
			token, err := auth.GenerateMemberToken(cfg.TokenSecret, args[0])
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
