package services_test

import (
	"errors"
	"strings"
	"testing"

	"clipset/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExtractionFailed, "sampler", "frame", "ffmpeg exited", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExtractionFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"sampler", "frame", "ffmpeg exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrInvalidPath, "", "", "", nil)
	if !errors.Is(err, services.ErrInvalidPath) {
		t.Fatalf("expected invalid path marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := map[string]error{
		"resource_unavailable": services.Wrap(services.ErrResourceUnavailable, "fetch", "resolve", "no 360p stream", nil),
		"fetch_failed":         services.Wrap(services.ErrFetchFailed, "fetch", "save", "", errors.New("reset")),
		"no_audio_track":       services.ErrNoAudioTrack,
		"extraction_failed":    services.Wrap(services.ErrExtractionFailed, "sampler", "audio", "", nil),
		"invalid_path":         services.Wrap(services.ErrInvalidPath, "extraction", "cleanup", "root", nil),
		"unknown":              errors.New("plain"),
		"":                     nil,
	}
	for want, err := range cases {
		if got := services.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}
