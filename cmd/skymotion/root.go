package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var envFile string
	var flags flagValues

	ctx := newCommandContext(&envFile, &flags)

	rootCmd := &cobra.Command{
		Use:           "skymotion",
		Short:         "Browse the SkyMotion drone move library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.session, "session", "", "Session id to keep in sync")
	rootCmd.PersistentFlags().StringVar(&flags.location, "location", "", "Page location carrying mode and sess parameters")
	rootCmd.PersistentFlags().StringVar(&flags.api, "api", "", "API base URL")
	rootCmd.PersistentFlags().StringVar(&flags.catalog, "catalog", "", `Catalog index URL, or "api" to read it from the API server`)
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load when present")

	rootCmd.AddCommand(newBrowseCommand(ctx))
	rootCmd.AddCommand(newSavedCommand(ctx))
	rootCmd.AddCommand(newSessionCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))

	return rootCmd
}
