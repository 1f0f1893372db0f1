package preflight

import (
	"fmt"
	"strings"

	"clipset/internal/config"
	"clipset/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks every configured working directory.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Videos directory", cfg.Paths.VideosDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Dataset directory", cfg.Paths.DatasetDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
}

// FirstFailure converts failed results into a configuration error.
func FirstFailure(results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Passed {
			continue
		}
		failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check directories", strings.Join(failed, "; "), nil)
}
