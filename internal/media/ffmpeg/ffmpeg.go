package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// commandContext is replaced in tests.
var commandContext = exec.CommandContext

// AudioSpec describes the encoding of an extracted audio slice.
type AudioSpec struct {
	SampleRate int
	Bitrate    string
	Codec      string
}

// DefaultAudioSpec mirrors the dataset defaults: 22050 Hz, 16-bit PCM, 50k.
func DefaultAudioSpec() AudioSpec {
	return AudioSpec{SampleRate: 22050, Bitrate: "50k", Codec: "pcm_s16le"}
}

// FrameArgs returns the ffmpeg arguments that write the frame at offset
// seconds of src to dest as PNG.
func FrameArgs(src string, offset float64, dest string) []string {
	return ffmpeggo.
		Input(src, ffmpeggo.KwArgs{"ss": seconds(offset)}).
		Output(dest, ffmpeggo.KwArgs{
			"frames:v": 1,
			"c:v":      "png",
			"f":        "image2",
		}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
}

// AudioArgs returns the ffmpeg arguments that write [offset, offset+duration)
// of src's audio to dest as WAV.
func AudioArgs(src string, offset, duration float64, spec AudioSpec, dest string) []string {
	spec = spec.withDefaults()
	return ffmpeggo.
		Input(src, ffmpeggo.KwArgs{"ss": seconds(offset)}).
		Output(dest, ffmpeggo.KwArgs{
			"t":      seconds(duration),
			"vn":     "",
			"acodec": spec.Codec,
			"ar":     spec.SampleRate,
			"b:a":    spec.Bitrate,
			"f":      "wav",
		}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
}

// Frame writes one PNG frame.
func Frame(ctx context.Context, binary, src string, offset float64, dest string) error {
	return run(ctx, binary, FrameArgs(src, offset, dest))
}

// Audio writes one WAV slice.
func Audio(ctx context.Context, binary, src string, offset, duration float64, spec AudioSpec, dest string) error {
	return run(ctx, binary, AudioArgs(src, offset, duration, spec, dest))
}

func run(ctx context.Context, binary string, args []string) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := commandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && detail != "" {
			return fmt.Errorf("ffmpeg exited with status %d: %s", exitErr.ExitCode(), lastLine(detail))
		}
		if detail != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(detail))
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

func (s AudioSpec) withDefaults() AudioSpec {
	def := DefaultAudioSpec()
	if s.SampleRate <= 0 {
		s.SampleRate = def.SampleRate
	}
	if strings.TrimSpace(s.Bitrate) == "" {
		s.Bitrate = def.Bitrate
	}
	if strings.TrimSpace(s.Codec) == "" {
		s.Codec = def.Codec
	}
	return s
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func lastLine(text string) string {
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
