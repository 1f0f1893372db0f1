package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipset/internal/logging"
	"clipset/internal/services"
	"clipset/internal/source"
)

const (
	ImageExt = ".png"
	AudioExt = ".wav"
)

// Truncation policies for audio slices that run past the end of a clip.
const (
	TruncationTruncate = "truncate"
	TruncationStrict   = "strict"
)

// Pair is the result of one successful extraction.
type Pair struct {
	ImagePath    string
	AudioPath    string
	AudioSeconds float64
	Source       source.Item
}

// Paths lists the artifact files of the pair.
func (p Pair) Paths() []string {
	var paths []string
	if p.ImagePath != "" {
		paths = append(paths, p.ImagePath)
	}
	if p.AudioPath != "" {
		paths = append(paths, p.AudioPath)
	}
	return paths
}

// Sampler extracts artifact pairs.
type Sampler struct {
	decoder    Decoder
	truncation string
	logger     *slog.Logger
}

// New builds a sampler. An empty truncation policy selects truncate.
func New(decoder Decoder, truncation string, logger *slog.Logger) *Sampler {
	truncation = strings.ToLower(strings.TrimSpace(truncation))
	if truncation == "" {
		truncation = TruncationTruncate
	}
	return &Sampler{
		decoder:    decoder,
		truncation: truncation,
		logger:     logging.NewComponentLogger(logger, "sampler"),
	}
}

// Extract writes {outputBase}.png and {outputBase}.wav from videoPath.
func (s *Sampler) Extract(ctx context.Context, videoPath string, offset, duration float64, outputBase string) (Pair, error) {
	if offset < 0 {
		return Pair{}, extractionError("validate", fmt.Sprintf("negative offset %.3f", offset), nil)
	}
	if duration <= 0 {
		return Pair{}, extractionError("validate", fmt.Sprintf("non-positive duration %.3f", duration), nil)
	}
	if strings.TrimSpace(outputBase) == "" {
		return Pair{}, services.Wrap(services.ErrInvalidPath, "extract", "validate", "empty output base", nil)
	}

	clip, err := s.decoder.Open(ctx, videoPath)
	if err != nil {
		return Pair{}, extractionError("open", videoPath, err)
	}
	defer clip.Close()

	if !clip.HasAudio() {
		return Pair{}, services.Wrap(services.ErrNoAudioTrack, "extract", "open", videoPath, nil)
	}

	length, err := s.audioLength(clip.Duration(), offset, duration)
	if err != nil {
		return Pair{}, err
	}

	if err := os.MkdirAll(filepath.Dir(outputBase), 0o755); err != nil {
		return Pair{}, services.Wrap(services.ErrInvalidPath, "extract", "prepare output", outputBase, err)
	}

	pair := Pair{
		ImagePath:    outputBase + ImageExt,
		AudioPath:    outputBase + AudioExt,
		AudioSeconds: length,
	}

	// The audio target is untouched until the frame is on disk.
	if err := clip.WriteFrame(ctx, offset, pair.ImagePath); err != nil {
		removeAll([]string{pair.ImagePath})
		return Pair{}, extractionError("frame", videoPath, err)
	}
	if err := requireFile(pair.ImagePath); err != nil {
		removeAll([]string{pair.ImagePath})
		return Pair{}, extractionError("frame", videoPath, err)
	}
	if err := clip.WriteAudio(ctx, offset, length, pair.AudioPath); err != nil {
		removeAll(pair.Paths())
		return Pair{}, extractionError("audio", videoPath, err)
	}
	if err := requireFile(pair.AudioPath); err != nil {
		removeAll(pair.Paths())
		return Pair{}, extractionError("audio", videoPath, err)
	}

	if length < duration {
		s.logger.Debug("audio slice truncated at clip end",
			logging.String("video", videoPath),
			logging.Float64("requested_seconds", duration),
			logging.Float64("audio_seconds", length),
		)
	}
	return pair, nil
}

// audioLength applies the truncation policy. A clip duration of zero means
// the decoder could not report one and the requested duration is used as is.
func (s *Sampler) audioLength(clipDuration, offset, duration float64) (float64, error) {
	if clipDuration <= 0 {
		return duration, nil
	}
	if offset >= clipDuration {
		return 0, extractionError("validate", fmt.Sprintf("offset %.3fs is beyond clip duration %.3fs", offset, clipDuration), nil)
	}
	remaining := clipDuration - offset
	if duration <= remaining {
		return duration, nil
	}
	if s.truncation == TruncationStrict {
		return 0, extractionError("validate", fmt.Sprintf("slice %.3fs+%.3fs exceeds clip duration %.3fs", offset, duration, clipDuration), nil)
	}
	return remaining, nil
}

func extractionError(operation, message string, err error) error {
	return services.Wrap(services.ErrExtractionFailed, "extract", operation, message, err)
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("decoder produced no file at %s", path)
		}
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("decoder produced an empty file at %s", path)
	}
	return nil
}

func removeAll(paths []string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}
