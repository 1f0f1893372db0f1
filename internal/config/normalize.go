package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeSampling()
	c.normalizeExtraction()
	c.normalizeInput()
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.VideosDir, err = expandPath(strings.TrimSpace(c.Paths.VideosDir)); err != nil {
		return fmt.Errorf("paths.videos_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.DatasetDir, err = expandPath(strings.TrimSpace(c.Paths.DatasetDir)); err != nil {
		return fmt.Errorf("paths.dataset_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFetch() {
	c.Fetch.Backend = strings.ToLower(strings.TrimSpace(c.Fetch.Backend))
	if c.Fetch.Backend == "" {
		c.Fetch.Backend = defaultFetchBackend
	}
	c.Fetch.Quality = strings.TrimSpace(c.Fetch.Quality)
	if c.Fetch.Quality == "" {
		c.Fetch.Quality = defaultFetchQuality
	}
	c.Fetch.URLTemplate = strings.TrimSpace(c.Fetch.URLTemplate)
	if c.Fetch.URLTemplate == "" {
		c.Fetch.URLTemplate = defaultURLTemplate
	}
	c.Fetch.YtdlpBinary = strings.TrimSpace(c.Fetch.YtdlpBinary)
	if value, ok := os.LookupEnv("CLIPSET_YTDLP"); ok && strings.TrimSpace(value) != "" {
		c.Fetch.YtdlpBinary = strings.TrimSpace(value)
	}
	if c.Fetch.YtdlpBinary == "" {
		c.Fetch.YtdlpBinary = defaultYtdlpBinary
	}
}

func (c *Config) normalizeSampling() {
	c.Sampling.AudioBitrate = strings.ToLower(strings.TrimSpace(c.Sampling.AudioBitrate))
	if c.Sampling.AudioBitrate == "" {
		c.Sampling.AudioBitrate = defaultAudioBitrate
	}
	c.Sampling.Truncation = strings.ToLower(strings.TrimSpace(c.Sampling.Truncation))
	if c.Sampling.Truncation == "" {
		c.Sampling.Truncation = defaultTruncation
	}
}

func (c *Config) normalizeExtraction() {
	c.Extraction.FailurePolicy = strings.ToLower(strings.TrimSpace(c.Extraction.FailurePolicy))
	if c.Extraction.FailurePolicy == "" {
		c.Extraction.FailurePolicy = defaultFailurePolicy
	}
}

func (c *Config) normalizeInput() {
	c.Input.Format = strings.ToLower(strings.TrimSpace(c.Input.Format))
	if c.Input.Format == "" {
		c.Input.Format = defaultInputFormat
	}
	if c.Input.Limit < 0 {
		c.Input.Limit = 0
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if value, ok := os.LookupEnv("CLIPSET_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Media.FFmpegBinary = strings.TrimSpace(value)
	}
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if value, ok := os.LookupEnv("CLIPSET_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Media.FFprobeBinary = strings.TrimSpace(value)
	}
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
