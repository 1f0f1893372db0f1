package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	VideosDir  string `toml:"videos_dir"`
	OutputDir  string `toml:"output_dir"`
	DatasetDir string `toml:"dataset_dir"`
	LogDir     string `toml:"log_dir"`
}

// Fetch contains configuration for the video fetch stage.
type Fetch struct {
	Backend     string `toml:"backend"`
	Quality     string `toml:"quality"`
	Workers     int    `toml:"workers"`
	URLTemplate string `toml:"url_template"`
	YtdlpBinary string `toml:"ytdlp_binary"`
}

// Sampling contains the frame/audio sampling format.
type Sampling struct {
	DurationSeconds float64 `toml:"duration_seconds"`
	SampleRate      int     `toml:"sample_rate"`
	AudioBitrate    string  `toml:"audio_bitrate"`
	// Truncation is "truncate" (slices end at clip end) or "strict" (reject
	// slices that run past the clip).
	Truncation string `toml:"truncation"`
}

// Extraction contains configuration for the extraction session.
type Extraction struct {
	// FailurePolicy is "item" (roll back only the failing item) or "session"
	// (wipe every artifact in the output directory on the first failure).
	FailurePolicy string `toml:"failure_policy"`
}

// Input describes the source table.
type Input struct {
	Format string `toml:"format"`
	Limit  int    `toml:"limit"`
}

// Media contains external decoder binaries.
type Media struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipset.
//
// Configuration sections by subsystem:
//   - Paths: videos, flat artifact output, labeled dataset, and log directories
//   - Fetch: backend selection, canonical quality, worker pool size
//   - Sampling: audio slice duration and PCM format, truncation policy
//   - Extraction: session failure policy
//   - Input: source table layout and row limit
//   - Media: ffmpeg/ffprobe binaries
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Fetch      Fetch      `toml:"fetch"`
	Sampling   Sampling   `toml:"sampling"`
	Extraction Extraction `toml:"extraction"`
	Input      Input      `toml:"input"`
	Media      Media      `toml:"media"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath is ~/.config/clipset/config.toml, expanded.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipset/config.toml")
}

// Load reads the configuration at path, or searches the default locations
// when path is empty, then normalizes and validates it. A missing file is
// not an error: defaults are used and exists is false.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved, exists, err = locate(strings.TrimSpace(path))
	if err != nil {
		return nil, "", false, err
	}

	loaded := Default()
	if exists {
		if err := decodeFile(resolved, &loaded); err != nil {
			return nil, "", false, err
		}
	}
	if err := loaded.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, "", false, err
	}
	return &loaded, resolved, exists, nil
}

// decodeFile rejects unknown keys so typos in section names surface instead
// of silently falling back to defaults.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err = dec.Decode(cfg)

	var strict *toml.StrictMissingError
	var decodeErr *toml.DecodeError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &strict):
		return fmt.Errorf("parse config %s: %s", path, strict.String())
	case errors.As(err, &decodeErr):
		row, col := decodeErr.Position()
		return fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
	default:
		return fmt.Errorf("parse config %s: %w", path, err)
	}
}

// locate resolves an explicit path as given. Without one it tries the user
// config and then ./clipset.toml, returning the user config path when
// neither exists.
func locate(path string) (string, bool, error) {
	var candidates []string
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		candidates = []string{expanded}
	} else {
		user, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		project, err := filepath.Abs("clipset.toml")
		if err != nil {
			return "", false, err
		}
		candidates = []string{user, project}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return candidates[0], false, nil
}

// EnsureDirectories creates the directories every pipeline stage writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.VideosDir, c.Paths.OutputDir, c.Paths.DatasetDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for sampling.
func (c *Config) FFmpegBinary() string {
	return c.Media.FFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for clip inspection.
func (c *Config) FFprobeBinary() string {
	return c.Media.FFprobeBinary
}

// ManifestPath returns the location of the run manifest database.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.LogDir, "manifest.db")
}

// LogPath returns the location of the persistent log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "clipset.log")
}

// expandPath resolves a leading ~ and makes the result absolute. Empty
// stays empty so optional paths can be left unset.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = home + value[1:]
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// ExpandPath applies the same ~ and absolute-path rules used for config values.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// CreateSample writes the commented sample configuration to path. Unless
// overwrite is set an existing file is left alone and the returned error
// matches fs.ErrExist.
func CreateSample(path string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		_ = f.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return f.Close()
}
