package sampler

import (
	"context"
	"fmt"

	"clipset/internal/media/ffmpeg"
	"clipset/internal/media/ffprobe"
)

// Clip is an opened media file.
type Clip interface {
	HasAudio() bool
	// Duration is the decodable length in seconds, or 0 when unknown.
	Duration() float64
	WriteFrame(ctx context.Context, at float64, dest string) error
	WriteAudio(ctx context.Context, from, length float64, dest string) error
	Close() error
}

// Decoder opens clips.
type Decoder interface {
	Open(ctx context.Context, path string) (Clip, error)
}

// FFmpegDecoder is the Decoder backed by the ffmpeg and ffprobe executables.
type FFmpegDecoder struct {
	FFmpegBinary  string
	FFprobeBinary string
	Audio         ffmpeg.AudioSpec
}

// Open probes path and returns a clip handle.
func (d FFmpegDecoder) Open(ctx context.Context, path string) (Clip, error) {
	probe, err := ffprobe.Inspect(ctx, d.FFprobeBinary, path)
	if err != nil {
		return nil, fmt.Errorf("open clip: %w", err)
	}
	if probe.VideoStreamCount() == 0 {
		return nil, fmt.Errorf("open clip: %s has no video stream", path)
	}
	return &ffmpegClip{decoder: d, path: path, probe: probe}, nil
}

type ffmpegClip struct {
	decoder FFmpegDecoder
	path    string
	probe   ffprobe.Result
}

func (c *ffmpegClip) HasAudio() bool {
	return c.probe.HasAudio()
}

func (c *ffmpegClip) Duration() float64 {
	return c.probe.DurationSeconds()
}

func (c *ffmpegClip) WriteFrame(ctx context.Context, at float64, dest string) error {
	return ffmpeg.Frame(ctx, c.decoder.FFmpegBinary, c.path, at, dest)
}

func (c *ffmpegClip) WriteAudio(ctx context.Context, from, length float64, dest string) error {
	return ffmpeg.Audio(ctx, c.decoder.FFmpegBinary, c.path, from, length, c.decoder.Audio, dest)
}

func (c *ffmpegClip) Close() error {
	return nil
}
