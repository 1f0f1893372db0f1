package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateSampling(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateInput(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	named := []struct {
		key   string
		value string
	}{
		{"paths.videos_dir", c.Paths.VideosDir},
		{"paths.output_dir", c.Paths.OutputDir},
		{"paths.dataset_dir", c.Paths.DatasetDir},
	}
	for _, p := range named {
		if strings.TrimSpace(p.value) == "" {
			return fmt.Errorf("%s must be set", p.key)
		}
		if isRoot(p.value) {
			return fmt.Errorf("%s must not be the filesystem root", p.key)
		}
	}
	if filepath.Clean(c.Paths.VideosDir) == filepath.Clean(c.Paths.OutputDir) {
		return errors.New("paths.videos_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validateFetch() error {
	switch c.Fetch.Backend {
	case BackendYouTube, BackendYtdlp:
	default:
		return fmt.Errorf("fetch.backend: unsupported value %q (want %q or %q)", c.Fetch.Backend, BackendYouTube, BackendYtdlp)
	}
	if c.Fetch.Workers <= 0 {
		return errors.New("fetch.workers must be positive")
	}
	if !strings.Contains(c.Fetch.URLTemplate, "%s") {
		return errors.New("fetch.url_template must contain a %s placeholder for the identifier")
	}
	return nil
}

func (c *Config) validateSampling() error {
	if c.Sampling.DurationSeconds <= 0 {
		return errors.New("sampling.duration_seconds must be positive")
	}
	if c.Sampling.SampleRate <= 0 {
		return errors.New("sampling.sample_rate must be positive")
	}
	switch c.Sampling.Truncation {
	case TruncationTruncate, TruncationStrict:
	default:
		return fmt.Errorf("sampling.truncation: unsupported value %q", c.Sampling.Truncation)
	}
	return nil
}

func (c *Config) validateExtraction() error {
	switch c.Extraction.FailurePolicy {
	case FailurePolicyItem, FailurePolicySession:
		return nil
	default:
		return fmt.Errorf("extraction.failure_policy: unsupported value %q", c.Extraction.FailurePolicy)
	}
}

func (c *Config) validateInput() error {
	switch c.Input.Format {
	case InputPlain, InputVGGSound:
		return nil
	default:
		return fmt.Errorf("input.format: unsupported value %q", c.Input.Format)
	}
}

func isRoot(path string) bool {
	cleaned := filepath.Clean(path)
	return filepath.Dir(cleaned) == cleaned
}
