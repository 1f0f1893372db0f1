package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipset/internal/config"
	"clipset/internal/deps"
	"clipset/internal/pipeline"
	"clipset/internal/services"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "fetch <input.csv>",
		Short: "Download every row of an input table into the videos directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Fetch.Backend == config.BackendYtdlp {
				if err := deps.RequireAvailable(deps.CheckBinaries(backendRequirements(cfg))); err != nil {
					return err
				}
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			items, err := ctx.loadItems(args[0], format, limit)
			if err != nil {
				return err
			}
			fetcher, err := pipeline.NewBatchFetcher(cfg, logger)
			if err != nil {
				return err
			}

			results := fetcher.FetchMany(cmd.Context(), items, cfg.Paths.VideosDir)
			rows := make([][]string, 0, len(results))
			fetched := 0
			for _, r := range results {
				status, detail := "fetched", r.LocalPath
				if !r.OK() {
					status, detail = services.Kind(r.Err), r.Err.Error()
				} else {
					fetched++
				}
				rows = append(rows, []string{strconv.Itoa(r.Index), r.Identifier, status, detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tableSpec{
				Headers: []string{"Row", "Identifier", "Status", "Path / Error"},
				Rows:    rows,
				Aligns:  []columnAlignment{alignRight},
				Footer:  []string{"", "", "fetched", fmt.Sprintf("%d of %d", fetched, len(results))},
			}.render())
			if fetched == 0 && len(results) > 0 {
				return services.Wrap(services.ErrFetchFailed, "fetch", "batch", "no clip could be fetched", nil)
			}
			return nil
		},
	}

	addInputFlags(cmd, &format, &limit)
	return cmd
}

// backendRequirements keeps only the fetch backend binary.
func backendRequirements(cfg *config.Config) []deps.Requirement {
	var reqs []deps.Requirement
	for _, req := range deps.Requirements(cfg) {
		if req.Command == cfg.Fetch.YtdlpBinary {
			reqs = append(reqs, req)
		}
	}
	return reqs
}
