package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clipset/internal/config"
	"clipset/internal/partition"
	"clipset/internal/sampler"
	"clipset/internal/source"
)

func newPartitionCommand(ctx *commandContext) *cobra.Command {
	var (
		format  string
		limit   int
		fromDir string
		toDir   string
	)

	cmd := &cobra.Command{
		Use:   "partition <input.csv>",
		Short: "Move flat artifacts into the labeled dataset tree",
		Long: `Move the .png and .wav files of the output directory under
images/{label}/ and sounds/{label}/. Row N of the input table labels the
files named N.png and N.wav; rows without artifacts are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			items, err := ctx.loadItems(args[0], format, limit)
			if err != nil {
				return err
			}
			flat, err := dirOrDefault(fromDir, cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			root, err := dirOrDefault(toDir, cfg.Paths.DatasetDir)
			if err != nil {
				return err
			}

			artifacts, skipped, err := itemArtifacts(items, flat)
			if err != nil {
				return err
			}
			tree, err := partition.PartitionArtifacts(artifacts, root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printTree(out, tree, root)
			if skipped > 0 {
				fmt.Fprintf(out, "Skipped %d rows with no artifacts in %s\n", skipped, flat)
			}
			return nil
		},
	}

	addInputFlags(cmd, &format, &limit)
	cmd.Flags().StringVar(&fromDir, "from", "", "Flat artifact directory (default paths.output_dir)")
	cmd.Flags().StringVar(&toDir, "to", "", "Dataset root (default paths.dataset_dir)")
	return cmd
}

// itemArtifacts pairs each row with the files named after its index, so the
// label never depends on directory listing order.
func itemArtifacts(items []source.Item, flatDir string) ([]partition.Artifact, int, error) {
	var (
		artifacts []partition.Artifact
		skipped   int
	)
	for _, item := range items {
		found := false
		for _, ext := range []string{sampler.ImageExt, sampler.AudioExt} {
			path := filepath.Join(flatDir, item.Stem()+ext)
			_, err := os.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, 0, fmt.Errorf("stat artifact: %w", err)
			}
			artifacts = append(artifacts, partition.Artifact{Path: path, Label: item.Label})
			found = true
		}
		if !found {
			skipped++
		}
	}
	return artifacts, skipped, nil
}

func dirOrDefault(value, fallback string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return config.ExpandPath(value)
}

func printTree(out io.Writer, tree partition.Tree, root string) {
	var rows [][]string
	for _, modality := range []string{partition.ModalityImages, partition.ModalitySounds} {
		for _, label := range tree.Labels(modality) {
			rows = append(rows, []string{modality, label, strconv.Itoa(len(tree.Files(modality, label)))})
		}
	}
	fmt.Fprintf(out, "Partitioned %d files into %s\n", tree.Count(), root)
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Modality", "Label", "Files"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
}
