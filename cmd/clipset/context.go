package main

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"clipset/internal/config"
	"clipset/internal/logging"
	"clipset/internal/manifest"
	"clipset/internal/source"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) withManifest(fn func(*manifest.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := manifest.Open(cfg.ManifestPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// loadItems reads the input table using the configured layout unless the
// command overrides it.
func (c *commandContext) loadItems(path, format string, limit int) ([]source.Item, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(format) == "" {
		format = cfg.Input.Format
	}
	if limit < 0 {
		limit = cfg.Input.Limit
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return source.Load(expanded, format, limit)
}

func addInputFlags(cmd *cobra.Command, format *string, limit *int) {
	cmd.Flags().StringVar(format, "format", "", "Input table layout: plain or vggsound (default from config)")
	cmd.Flags().IntVar(limit, "limit", -1, "Read at most this many rows (default from config; 0 reads all)")
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// writeJSON prints v for --json consumers; stdout carries nothing else.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(append(data, '\n'))
	return err
}
