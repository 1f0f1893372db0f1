package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipset/internal/config"
)

// ConfigOption adjusts a generated test configuration.
type ConfigOption func(t testing.TB, cfg *config.Config)

// NewConfig returns the default configuration with every path moved under a
// fresh temp directory:
//
//	<tmp>/videos  <tmp>/data  <tmp>/dataset  <tmp>/logs
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.VideosDir = filepath.Join(base, "videos")
	cfg.Paths.OutputDir = filepath.Join(base, "data")
	cfg.Paths.DatasetDir = filepath.Join(base, "dataset")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(t, &cfg)
	}
	return &cfg
}

// BaseDir is the temp directory NewConfig placed every path under.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.VideosDir)
}

func WithBackend(backend string) ConfigOption {
	return func(_ testing.TB, cfg *config.Config) { cfg.Fetch.Backend = backend }
}

func WithFailurePolicy(policy string) ConfigOption {
	return func(_ testing.TB, cfg *config.Config) { cfg.Extraction.FailurePolicy = policy }
}

// WithStubbedBinaries puts no-op executables named after the media and
// download tools first on PATH, so dependency checks pass without them
// installed. Tests using it cannot run in parallel.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, cfg *config.Config) {
		t.Helper()
		if len(names) == 0 {
			names = []string{cfg.FFmpegBinary(), cfg.FFprobeBinary(), cfg.Fetch.YtdlpBinary}
		}
		bin := filepath.Join(BaseDir(cfg), "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", bin, err)
		}
		for _, name := range names {
			if name == "" || strings.ContainsRune(name, filepath.Separator) {
				continue
			}
			stub := filepath.Join(bin, name)
			if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", stub, err)
			}
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
