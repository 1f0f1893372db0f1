package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipset/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Outputs are "stdout", "stderr" or file paths. Empty means stderr.
	Outputs []string
	// AddSource forces caller locations; debug level always includes them.
	AddSource bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := opts.AddSource || level.Level() <= slog.LevelDebug

	var build func(io.Writer, *slog.LevelVar, bool) slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		build = newConsoleHandler
	case "json":
		build = newJSONHandler
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	w, err := openOutputs(opts.Outputs)
	if err != nil {
		return nil, err
	}
	return slog.New(build(w, level, addSource)), nil
}

// NewFromConfig logs to stderr and to the configured log file, keeping
// stdout free for command output.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, cfg.LogPath())
	}
	return New(Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Outputs: outputs,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutputs(outputs []string) (io.Writer, error) {
	seen := make(map[string]bool, len(outputs))
	var writers []io.Writer
	for _, target := range outputs {
		target = strings.TrimSpace(target)
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true

		switch target {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", target, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}
