package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"clipset/internal/manifest"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded build runs",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManifest(func(store *manifest.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format("2006-01-02 15:04"),
						runState(run),
						strconv.Itoa(run.Total),
						strconv.Itoa(run.Partitioned),
						strconv.Itoa(run.Failed),
						run.InputPath,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Started", "State", "Rows", "Partitioned", "Failed", "Input"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var (
		failedOnly bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-row outcome of a run",
		Long:  "Show the per-row outcome of a run. Any unambiguous prefix of the run id is accepted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManifest(func(store *manifest.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				records, err := store.Items(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if failedOnly {
					records = filterFailed(records)
				}
				if jsonOutput {
					return writeJSON(cmd, runDetailJSON(run, records))
				}
				printRun(cmd.OutOrStdout(), run, records)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed rows")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}

func printRun(out io.Writer, run *manifest.Run, records []manifest.Record) {
	fmt.Fprintf(out, "Run:       %s\n", run.ID)
	if run.InputPath != "" {
		fmt.Fprintf(out, "Input:     %s\n", run.InputPath)
	}
	fmt.Fprintf(out, "Started:   %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "State:     %s\n", runState(*run))
	if run.Finished() {
		fmt.Fprintf(out, "Elapsed:   %s\n", run.Elapsed().Round(time.Second))
	}
	fmt.Fprintf(out, "Rows:      %d (fetched %d, extracted %d, partitioned %d, failed %d)\n",
		run.Total, run.Fetched, run.Extracted, run.Partitioned, run.Failed)

	if len(records) == 0 {
		return
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		detail := r.ImagePath
		if r.Status.IsFailure() {
			detail = r.ErrorMessage
		} else if detail == "" {
			detail = r.VideoPath
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Index),
			r.Identifier,
			strconv.FormatFloat(r.Offset, 'f', -1, 64),
			r.Label,
			string(r.Status),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Row", "Identifier", "Offset", "Label", "Status", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight},
	))
}

func filterFailed(records []manifest.Record) []manifest.Record {
	var failed []manifest.Record
	for _, r := range records {
		if r.Status.IsFailure() {
			failed = append(failed, r)
		}
	}
	return failed
}

func runState(run manifest.Run) string {
	if run.Finished() {
		return "finished"
	}
	return "incomplete"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type recordJSON struct {
	Index        int     `json:"index"`
	Identifier   string  `json:"identifier"`
	Offset       float64 `json:"offset"`
	Label        string  `json:"label,omitempty"`
	Status       string  `json:"status"`
	VideoPath    string  `json:"video_path,omitempty"`
	ImagePath    string  `json:"image_path,omitempty"`
	AudioPath    string  `json:"audio_path,omitempty"`
	AudioSeconds float64 `json:"audio_seconds,omitempty"`
	ErrorKind    string  `json:"error_kind,omitempty"`
	Error        string  `json:"error,omitempty"`
}

type runDetail struct {
	ID         string          `json:"id"`
	InputPath  string          `json:"input_path,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Total      int             `json:"total"`
	Counts     manifest.Counts `json:"counts"`
	Items      []recordJSON    `json:"items"`
}

func runDetailJSON(run *manifest.Run, records []manifest.Record) runDetail {
	detail := runDetail{
		ID:         run.ID,
		InputPath:  run.InputPath,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Total:      run.Total,
		Counts: manifest.Counts{
			Fetched:     run.Fetched,
			Extracted:   run.Extracted,
			Partitioned: run.Partitioned,
			Failed:      run.Failed,
		},
		Items: make([]recordJSON, 0, len(records)),
	}
	for _, r := range records {
		detail.Items = append(detail.Items, recordJSON{
			Index:        r.Index,
			Identifier:   r.Identifier,
			Offset:       r.Offset,
			Label:        r.Label,
			Status:       string(r.Status),
			VideoPath:    r.VideoPath,
			ImagePath:    r.ImagePath,
			AudioPath:    r.AudioPath,
			AudioSeconds: r.AudioSeconds,
			ErrorKind:    r.ErrorKind,
			Error:        r.ErrorMessage,
		})
	}
	return detail
}
