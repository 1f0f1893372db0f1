package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"clipset/internal/deps"
	"clipset/internal/manifest"
	"clipset/internal/pipeline"
	"clipset/internal/preflight"
	"clipset/internal/services"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		format          string
		limit           int
		removeOriginals bool
		jsonOutput      bool
	)

	cmd := &cobra.Command{
		Use:   "build <input.csv>",
		Short: "Fetch, sample and partition every row of an input table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			if err := preflight.FirstFailure(preflight.RunAll(cfg)); err != nil {
				return err
			}
			if err := deps.RequireAvailable(preflight.CheckSystemDeps(cfg)); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			items, err := ctx.loadItems(args[0], format, limit)
			if err != nil {
				return err
			}

			return ctx.withManifest(func(store *manifest.Store) error {
				p, err := pipeline.FromConfig(cfg, logger,
					pipeline.WithStore(store),
					pipeline.WithRemoveOriginals(removeOriginals),
				)
				if err != nil {
					return err
				}
				report, runErr := p.Run(cmd.Context(), args[0], items)
				if jsonOutput {
					if err := writeJSON(cmd, reportJSON(report)); err != nil {
						return err
					}
				} else {
					printReport(cmd.OutOrStdout(), report)
				}
				return runErr
			})
		},
	}

	addInputFlags(cmd, &format, &limit)
	cmd.Flags().BoolVar(&removeOriginals, "remove-originals", false, "Delete fetched videos after the dataset is built")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run report as JSON")
	return cmd
}

func printReport(out io.Writer, report pipeline.Report) {
	counts := report.Counts()
	fmt.Fprintf(out, "Run %s\n", report.RunID)
	fmt.Fprintln(out, renderTable(
		[]string{"Rows", "Fetched", "Extracted", "Partitioned", "Failed"},
		[][]string{{
			strconv.Itoa(len(report.Outcomes)),
			strconv.Itoa(counts.Fetched),
			strconv.Itoa(counts.Extracted),
			strconv.Itoa(counts.Partitioned),
			strconv.Itoa(counts.Failed),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	if report.CleanedUp {
		fmt.Fprintln(out, "Extraction failed under the session policy; the output directory was cleaned.")
	}
	if report.Removed > 0 {
		fmt.Fprintf(out, "Removed %d original videos\n", report.Removed)
	}

	failures := report.Failures()
	if len(failures) == 0 {
		return
	}
	rows := make([][]string, 0, len(failures))
	for _, o := range failures {
		rows = append(rows, []string{
			strconv.Itoa(o.Item.Index),
			o.Item.Identifier,
			o.Stage,
			services.Kind(o.Err),
			o.Err.Error(),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Row", "Identifier", "Stage", "Kind", "Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
}

type outcomeJSON struct {
	Index      int    `json:"index"`
	Identifier string `json:"identifier"`
	Label      string `json:"label,omitempty"`
	Stage      string `json:"stage"`
	VideoPath  string `json:"video_path,omitempty"`
	ImagePath  string `json:"image_path,omitempty"`
	AudioPath  string `json:"audio_path,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
}

type reportOutput struct {
	RunID     string          `json:"run_id"`
	Counts    manifest.Counts `json:"counts"`
	CleanedUp bool            `json:"cleaned_up"`
	Removed   int             `json:"removed_originals"`
	Items     []outcomeJSON   `json:"items"`
}

func reportJSON(report pipeline.Report) reportOutput {
	out := reportOutput{
		RunID:     report.RunID,
		Counts:    report.Counts(),
		CleanedUp: report.CleanedUp,
		Removed:   report.Removed,
		Items:     make([]outcomeJSON, 0, len(report.Outcomes)),
	}
	for _, o := range report.Outcomes {
		item := outcomeJSON{
			Index:      o.Item.Index,
			Identifier: o.Item.Identifier,
			Label:      o.Item.Label,
			Stage:      o.Stage,
			VideoPath:  o.VideoPath,
			ImagePath:  o.ImagePath,
			AudioPath:  o.AudioPath,
		}
		if o.Err != nil {
			item.ErrorKind = services.Kind(o.Err)
			item.Error = o.Err.Error()
		}
		out.Items = append(out.Items, item)
	}
	return out
}
