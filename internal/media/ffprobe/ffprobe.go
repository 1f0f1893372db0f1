package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// commandContext is replaced in tests.
var commandContext = exec.CommandContext

// showEntries limits ffprobe output to the fields the sampler reads.
const showEntries = "stream=index,codec_type,codec_name,duration,width,height,sample_rate,channels:format=duration,format_name"

// Result is the subset of ffprobe's JSON report clipset uses.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	Index      int    `json:"index"`
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Duration   string `json:"duration"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type Format struct {
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect probes the container at path. Only stdout is decoded; stderr is
// attached to the error when ffprobe fails.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}

	var stdout, stderr bytes.Buffer
	cmd := commandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_entries", showEntries, "-of", "json", "--", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse %s: %w", path, err)
	}
	return result, nil
}

func (r Result) VideoStreamCount() int { return r.count("video") }

func (r Result) AudioStreamCount() int { return r.count("audio") }

// HasAudio reports whether an audio slice can be cut from the clip.
func (r Result) HasAudio() bool { return r.count("audio") > 0 }

func (r Result) count(codecType string) int {
	n := 0
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, codecType) {
			n++
		}
	}
	return n
}

// DurationSeconds prefers the container duration and falls back to the
// longest stream. Zero means unknown.
func (r Result) DurationSeconds() float64 {
	if d := seconds(r.Format.Duration); d > 0 {
		return d
	}
	longest := 0.0
	for _, s := range r.Streams {
		longest = max(longest, seconds(s.Duration))
	}
	return longest
}

// seconds parses ffprobe's decimal strings, including "N/A".
func seconds(value string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
