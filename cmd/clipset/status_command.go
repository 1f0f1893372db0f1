package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipset/internal/config"
	"clipset/internal/deps"
	"clipset/internal/manifest"
	"clipset/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, external tools and the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			emit := func(lines []string) {
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
			}

			emit(renderSectionHeader("Configuration", colorize))
			emit(configLines(cfg, colorize))
			fmt.Fprintln(out)

			emit(renderSectionHeader("Directories", colorize))
			for _, result := range preflight.RunAll(cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out)

			emit(renderSectionHeader("Dependencies", colorize))
			emit(dependencyLines(preflight.CheckSystemDeps(cfg), colorize))
			fmt.Fprintln(out)

			emit(renderSectionHeader("Last Run", colorize))
			return ctx.withManifest(func(store *manifest.Store) error {
				runs, err := store.ListRuns(cmd.Context(), 1)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, renderStatusLine("Run", statusInfo, "No runs recorded", colorize))
					return nil
				}
				run := runs[0]
				kind := statusOK
				switch {
				case !run.Finished():
					kind = statusWarn
				case run.Failed > 0:
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Run", kind,
					fmt.Sprintf("%s %s: %d/%d partitioned, %d failed", shortID(run.ID), runState(run), run.Partitioned, run.Total, run.Failed),
					colorize))
				return nil
			})
		},
	}
}

func configLines(cfg *config.Config, colorize bool) []string {
	return []string{
		renderStatusLine("Fetch backend", statusInfo, fmt.Sprintf("%s (%s, %d workers)", cfg.Fetch.Backend, cfg.Fetch.Quality, cfg.Fetch.Workers), colorize),
		renderStatusLine("Sampling", statusInfo, fmt.Sprintf("%gs at %d Hz, %s", cfg.Sampling.DurationSeconds, cfg.Sampling.SampleRate, cfg.Sampling.Truncation), colorize),
		renderStatusLine("Failure policy", statusInfo, cfg.Extraction.FailurePolicy, colorize),
		renderStatusLine("Manifest", statusInfo, cfg.ManifestPath(), colorize),
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	var missing []string
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusInfo
			detail += " (optional)"
		} else {
			missing = append(missing, dep.Name)
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", ")+" (required by clipset build)", colorize))
	}
	return lines
}
