package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResourceUnavailable marks identifiers with no stream at the canonical quality.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrFetchFailed marks transport or decode failures while downloading.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNoAudioTrack marks clips without a decodable audio stream.
	ErrNoAudioTrack = errors.New("no audio track")
	// ErrExtractionFailed marks decode failures while sampling frames or audio.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrInvalidPath marks missing or unsafe directories. These are always returned.
	ErrInvalidPath = errors.New("invalid path")
	// ErrSessionBusy marks an output directory locked by another session.
	ErrSessionBusy = errors.New("session busy")

	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

var kinds = []struct {
	marker error
	kind   string
}{
	{ErrResourceUnavailable, "resource_unavailable"},
	{ErrFetchFailed, "fetch_failed"},
	{ErrNoAudioTrack, "no_audio_track"},
	{ErrExtractionFailed, "extraction_failed"},
	{ErrInvalidPath, "invalid_path"},
	{ErrSessionBusy, "session_busy"},
	{ErrValidation, "validation"},
	{ErrConfiguration, "configuration"},
	{ErrExternalTool, "external_tool"},
}

// Kind returns the short classification recorded in logs and the run manifest.
// Nil errors report an empty kind; unclassified errors report "unknown".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.marker) {
			return k.kind
		}
	}
	return "unknown"
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
