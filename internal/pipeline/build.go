package pipeline

import (
	"fmt"
	"log/slog"

	"clipset/internal/config"
	"clipset/internal/extraction"
	"clipset/internal/fetch"
	"clipset/internal/media/ffmpeg"
	"clipset/internal/sampler"
	"clipset/internal/services"
	"clipset/internal/services/youtube"
	"clipset/internal/services/ytdlp"
)

// NewResolver returns the fetch backend selected by cfg.
func NewResolver(cfg *config.Config) (fetch.Resolver, error) {
	switch cfg.Fetch.Backend {
	case config.BackendYouTube, "":
		return youtube.New(), nil
	case config.BackendYtdlp:
		client, err := ytdlp.New(cfg.Fetch.YtdlpBinary)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "select backend", "yt-dlp", err)
		}
		return client, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "select backend", fmt.Sprintf("unknown backend %q", cfg.Fetch.Backend), nil)
	}
}

// NewBatchFetcher builds the concurrent fetcher configured by cfg.
func NewBatchFetcher(cfg *config.Config, logger *slog.Logger) (*fetch.BatchFetcher, error) {
	resolver, err := NewResolver(cfg)
	if err != nil {
		return nil, err
	}
	fetcher := fetch.NewFetcher(resolver, cfg.Fetch.Quality, logger)
	return fetch.NewBatchFetcher(fetcher, cfg.Fetch.Workers, cfg.Fetch.URLTemplate, logger), nil
}

// NewSampler builds the ffmpeg-backed sampler configured by cfg.
func NewSampler(cfg *config.Config, logger *slog.Logger) *sampler.Sampler {
	audio := ffmpeg.DefaultAudioSpec()
	if cfg.Sampling.SampleRate > 0 {
		audio.SampleRate = cfg.Sampling.SampleRate
	}
	if cfg.Sampling.AudioBitrate != "" {
		audio.Bitrate = cfg.Sampling.AudioBitrate
	}
	decoder := sampler.FFmpegDecoder{
		FFmpegBinary:  cfg.FFmpegBinary(),
		FFprobeBinary: cfg.FFprobeBinary(),
		Audio:         audio,
	}
	return sampler.New(decoder, cfg.Sampling.Truncation, logger)
}

// NewSession opens the extraction session configured by cfg. The videos
// and output directories are created when missing.
func NewSession(cfg *config.Config, extractor extraction.Extractor, logger *slog.Logger) (*extraction.Session, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrInvalidPath, "pipeline", "ensure directories", "", err)
	}
	return extraction.NewSession(cfg.Paths.VideosDir, cfg.Paths.OutputDir, extractor,
		extraction.WithFailurePolicy(cfg.Extraction.FailurePolicy),
		extraction.WithDuration(cfg.Sampling.DurationSeconds),
		extraction.WithLogger(logger),
	)
}

// FromConfig wires the production pipeline.
func FromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	fetcher, err := NewBatchFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(cfg, NewSampler(cfg, logger), logger)
	if err != nil {
		return nil, err
	}
	return New(fetcher, session, cfg.Paths.DatasetDir, append([]Option{WithLogger(logger)}, opts...)...)
}
