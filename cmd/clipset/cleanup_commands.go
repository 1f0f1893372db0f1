package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipset/internal/extraction"
	"clipset/internal/pipeline"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove every .png and .wav artifact from the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(session *extraction.Session) error {
				result, err := session.Cleanup()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d artifacts from %s\n", len(result.Removed), result.Dir)
				return nil
			})
		},
	}
}

func newRemoveOriginalsCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "remove-originals",
		Short: "Delete every fetched video from the videos directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("remove-originals deletes every file in the videos directory; pass --yes to confirm")
			}
			return ctx.withSession(func(session *extraction.Session) error {
				result, err := session.RemoveOriginals()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d videos from %s\n", len(result.Removed), result.Dir)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm deletion")
	return cmd
}

func (c *commandContext) withSession(fn func(*extraction.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	session, err := pipeline.NewSession(cfg, pipeline.NewSampler(cfg, logger), logger)
	if err != nil {
		return err
	}
	return fn(session)
}
