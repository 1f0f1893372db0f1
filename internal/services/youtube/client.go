package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	yt "github.com/kkdai/youtube/v2"

	"clipset/internal/fetch"
	"clipset/internal/services"
	"clipset/internal/textutil"
)

// API is the subset of the kkdai client used here.
type API interface {
	GetVideoContext(ctx context.Context, id string) (*yt.Video, error)
	GetStreamContext(ctx context.Context, video *yt.Video, format *yt.Format) (io.ReadCloser, int64, error)
}

// Option configures the client.
type Option func(*Client)

// WithAPI injects a custom API implementation (primarily for tests).
func WithAPI(api API) Option {
	return func(c *Client) {
		if api != nil {
			c.api = api
		}
	}
}

// Client resolves YouTube identifiers to downloadable streams.
type Client struct {
	api API
}

// New constructs a YouTube client.
func New(opts ...Option) *Client {
	client := &Client{api: &yt.Client{}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Resolve implements fetch.Resolver.
func (c *Client) Resolve(ctx context.Context, identifier, quality string) (fetch.Stream, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.New("youtube: empty identifier")
	}
	video, err := c.api.GetVideoContext(ctx, identifier)
	if err != nil {
		if unavailable(err) {
			return nil, services.Wrap(services.ErrResourceUnavailable, "fetch", "resolve", identifier, err)
		}
		return nil, fmt.Errorf("youtube: get video: %w", err)
	}

	format, ok := selectFormat(video.Formats, quality)
	if !ok {
		return nil, services.Wrap(
			services.ErrResourceUnavailable,
			"fetch",
			"resolve",
			fmt.Sprintf("no %s stream with audio for %s", quality, identifier),
			nil,
		)
	}
	return &stream{api: c.api, video: video, format: format}, nil
}

// selectFormat picks the first rendition at quality that carries audio,
// preferring mp4 containers.
func selectFormat(formats yt.FormatList, quality string) (yt.Format, bool) {
	candidates := formats.Quality(quality).WithAudioChannels()
	if len(candidates) == 0 {
		return yt.Format{}, false
	}
	for _, f := range candidates {
		if strings.HasPrefix(f.MimeType, "video/mp4") {
			return f, true
		}
	}
	return candidates[0], true
}

// unavailable reports errors that mean the video itself cannot be served,
// as opposed to transport failures worth retrying.
func unavailable(err error) bool {
	var playability *yt.ErrPlayabiltyStatus
	if errors.As(err, &playability) || errors.As(err, new(yt.ErrPlayabiltyStatus)) {
		return true
	}
	return errors.Is(err, yt.ErrVideoPrivate) ||
		errors.Is(err, yt.ErrNotPlayableInEmbed) ||
		errors.Is(err, yt.ErrLoginRequired) ||
		errors.Is(err, yt.ErrInvalidCharactersInVideoID) ||
		errors.Is(err, yt.ErrVideoIDMinLength)
}

type stream struct {
	api    API
	video  *yt.Video
	format yt.Format
}

func (s *stream) DefaultName() string {
	title := textutil.SanitizeFileName(s.video.Title)
	if title == "" {
		title = s.video.ID
	}
	return title + extension(s.format.MimeType)
}

func (s *stream) Save(ctx context.Context, path string) error {
	body, _, err := s.api.GetStreamContext(ctx, s.video, &s.format)
	if err != nil {
		return fmt.Errorf("youtube: open stream: %w", err)
	}
	defer body.Close()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("youtube: create %s: %w", path, err)
	}
	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		return fmt.Errorf("youtube: download: %w", err)
	}
	return out.Close()
}

func extension(mimeType string) string {
	mediaType, _, _ := strings.Cut(mimeType, ";")
	switch strings.TrimSpace(mediaType) {
	case "video/webm", "audio/webm":
		return ".webm"
	case "video/3gpp":
		return ".3gp"
	default:
		return ".mp4"
	}
}
