package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbose bool

	ctx := newCommandContext(&configFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:           "clipset",
		Short:         "Build image/audio datasets from online video clips",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newBuildCommand(ctx))
	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newPartitionCommand(ctx))
	rootCmd.AddCommand(newCleanupCommand(ctx))
	rootCmd.AddCommand(newRemoveOriginalsCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
