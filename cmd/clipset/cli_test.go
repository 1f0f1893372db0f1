package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipset/internal/config"
	"clipset/internal/services"
	"clipset/internal/source"
	"clipset/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	configPath := filepath.Join(base, "clipset.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nvideos_dir = %q\noutput_dir = %q\ndataset_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.VideosDir,
		cfg.Paths.OutputDir,
		cfg.Paths.DatasetDir,
		cfg.Paths.LogDir,
	)
	testsupport.WriteText(t, path, content)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestStatusReportsEnvironment(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Directories\n-----------")
	requireContains(t, out, "Videos directory:")
	requireContains(t, out, "FFmpeg:")
	requireContains(t, out, "[OK] Ready (command: ffmpeg)")
	requireContains(t, out, "No runs recorded")
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour codes when writing to a buffer: %q", out)
	}
}

func TestRunsListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	store := testsupport.MustOpenManifest(t, env.cfg)
	items := []source.Item{
		{Index: 0, Identifier: "abc", Offset: 3, Label: "cat"},
		{Index: 1, Identifier: "def", Offset: 4, Label: "dog"},
	}
	testsupport.NewRun(t, store, "0123456789abcdef", items)
	ctx := context.Background()
	if err := store.RecordFetch(ctx, "0123456789abcdef", 0, "/videos/0.mp4", nil); err != nil {
		t.Fatalf("RecordFetch: %v", err)
	}
	fetchErr := services.Wrap(services.ErrResourceUnavailable, "fetch", "resolve", "def", errors.New("video is private"))
	if err := store.RecordFetch(ctx, "0123456789abcdef", 1, "", fetchErr); err != nil {
		t.Fatalf("RecordFetch failure: %v", err)
	}

	out, _, err = runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "01234567")
	requireContains(t, out, "incomplete")

	out, _, err = runCLI(t, []string{"runs", "show", "0123"}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, "0123456789abcdef")
	requireContains(t, out, "fetch_failed")
	requireContains(t, out, "video is private")

	out, _, err = runCLI(t, []string{"runs", "show", "0123", "--failed", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("runs show --json: %v", err)
	}
	var detail runDetail
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(detail.Items) != 1 || detail.Items[0].Identifier != "def" || detail.Items[0].ErrorKind != "resource_unavailable" {
		t.Fatalf("unexpected detail: %+v", detail)
	}

	if _, _, err := runCLI(t, []string{"runs", "show", "zzz"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestPartitionCommandMovesArtifacts(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, name := range []string{"0.png", "0.wav", "1.png", "1.wav"} {
		testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, name), 8)
	}
	input := filepath.Join(env.baseDir, "input.csv")
	testsupport.WriteText(t, input, "abc,1,cat\ndef,2,dog\n")

	out, _, err := runCLI(t, []string{"partition", input}, env.configPath)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	requireContains(t, out, "Partitioned 4 files")

	for _, rel := range []string{"images/cat/0.png", "sounds/cat/0.wav", "images/dog/1.png", "sounds/dog/1.wav"} {
		if _, err := os.Stat(filepath.Join(env.cfg.Paths.DatasetDir, rel)); err != nil {
			t.Fatalf("expected %s: %v", rel, err)
		}
	}
}

func TestPartitionCommandLabelsByIndexNotListingOrder(t *testing.T) {
	env := setupCLITestEnv(t)

	const rows = 12
	var table strings.Builder
	for i := range rows {
		testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, fmt.Sprintf("%d.png", i)), 8)
		testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, fmt.Sprintf("%d.wav", i)), 8)
		fmt.Fprintf(&table, "id%d,1,label%d\n", i, i)
	}
	input := filepath.Join(env.baseDir, "input.csv")
	testsupport.WriteText(t, input, table.String())

	out, _, err := runCLI(t, []string{"partition", input}, env.configPath)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Partitioned %d files", rows*2))

	for i := range rows {
		for _, rel := range []string{
			fmt.Sprintf("images/label%d/%d.png", i, i),
			fmt.Sprintf("sounds/label%d/%d.wav", i, i),
		} {
			if _, err := os.Stat(filepath.Join(env.cfg.Paths.DatasetDir, rel)); err != nil {
				t.Fatalf("row %d: expected %s: %v", i, rel, err)
			}
		}
	}
}

func TestPartitionCommandSkipsRowsWithoutArtifacts(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, "0.png"), 8)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, "0.wav"), 8)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, "2.png"), 8)
	input := filepath.Join(env.baseDir, "input.csv")
	testsupport.WriteText(t, input, "abc,1,cat\ndef,2,dog\nghi,3,bird\n")

	out, _, err := runCLI(t, []string{"partition", input}, env.configPath)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	requireContains(t, out, "Partitioned 3 files")
	requireContains(t, out, "Skipped 1 rows with no artifacts")

	for _, rel := range []string{"images/cat/0.png", "sounds/cat/0.wav", "images/bird/2.png"} {
		if _, err := os.Stat(filepath.Join(env.cfg.Paths.DatasetDir, rel)); err != nil {
			t.Fatalf("expected %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.DatasetDir, "images", "dog")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no dog directory, stat err=%v", err)
	}
}

func TestCleanupCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, "0.png"), 8)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, "0.wav"), 8)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, "notes.txt"), 8)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.VideosDir, "0.mp4"), 8)

	out, _, err := runCLI(t, []string{"cleanup"}, env.configPath)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	requireContains(t, out, "Removed 2 artifacts")
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "notes.txt")); err != nil {
		t.Fatalf("expected unrelated file to survive: %v", err)
	}

	if _, _, err := runCLI(t, []string{"remove-originals"}, env.configPath); err == nil {
		t.Fatal("expected remove-originals to require --yes")
	}
	out, _, err = runCLI(t, []string{"remove-originals", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("remove-originals: %v", err)
	}
	requireContains(t, out, "Removed 1 videos")
}

func TestBuildRejectsMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"build", filepath.Join(env.baseDir, "missing.csv")}, env.configPath)
	if !errors.Is(err, services.ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}
