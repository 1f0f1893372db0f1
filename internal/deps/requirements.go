package deps

import (
	"fmt"
	"strings"

	"clipset/internal/config"
	"clipset/internal/services"
)

// Requirements lists the binaries the configured pipeline executes.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	reqs := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Extracts frames and audio slices",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Inspects fetched clips for audio streams and duration",
		},
	}
	reqs = append(reqs, Requirement{
		Name:        "yt-dlp",
		Command:     cfg.Fetch.YtdlpBinary,
		Description: "Downloads clips when fetch.backend is ytdlp",
		Optional:    cfg.Fetch.Backend != config.BackendYtdlp,
	})
	return reqs
}

// RequireAvailable returns an error naming every required binary that is missing.
func RequireAvailable(statuses []Status) error {
	var missing []string
	for _, status := range statuses {
		if status.Available || status.Optional {
			continue
		}
		missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
	}
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(
		services.ErrConfiguration,
		"preflight",
		"check binaries",
		"missing required binaries: "+strings.Join(missing, ", "),
		nil,
	)
}
