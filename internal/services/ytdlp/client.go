package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	goytdlp "github.com/lrstanley/go-ytdlp"

	"clipset/internal/fetch"
	"clipset/internal/services"
	"clipset/internal/textutil"
)

const formatUnavailableMarker = "Requested format is not available"

// Downloader runs one yt-dlp download and returns its stderr.
type Downloader interface {
	Download(ctx context.Context, binary, target, format, output string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithDownloader injects a custom downloader (primarily for tests).
func WithDownloader(d Downloader) Option {
	return func(c *Client) {
		if d != nil {
			c.downloader = d
		}
	}
}

// Client wraps yt-dlp invocations.
type Client struct {
	binary     string
	downloader Downloader
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{binary: binary, downloader: commandDownloader{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Resolve implements fetch.Resolver.
func (c *Client) Resolve(_ context.Context, identifier, quality string) (fetch.Stream, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.New("yt-dlp: empty identifier")
	}
	selector, err := FormatSelector(quality)
	if err != nil {
		return nil, err
	}
	return &stream{client: c, target: identifier, format: selector}, nil
}

// FormatSelector converts a quality label such as "360p" into a yt-dlp
// format selector for a single file carrying both audio and video.
func FormatSelector(quality string) (string, error) {
	height := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(quality)), "p")
	if height == "" {
		return "", fmt.Errorf("yt-dlp: empty quality")
	}
	for _, r := range height {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("yt-dlp: unsupported quality %q", quality)
		}
	}
	base := fmt.Sprintf("best[height=%s][vcodec!=none][acodec!=none]", height)
	return base + "[ext=mp4]/" + base, nil
}

type stream struct {
	client *Client
	target string
	format string
}

func (s *stream) DefaultName() string {
	name := s.target
	if parsed, err := url.Parse(s.target); err == nil && parsed.Host != "" {
		if v := parsed.Query().Get("v"); v != "" {
			name = v
		} else {
			name = strings.Trim(parsed.Path, "/")
		}
	}
	name = textutil.SanitizeFileName(name)
	if name == "" {
		name = "clip"
	}
	return name + fetch.VideoExt
}

func (s *stream) Save(ctx context.Context, path string) error {
	stderr, err := s.client.downloader.Download(ctx, s.client.binary, s.target, s.format, path)
	if err == nil {
		return nil
	}
	if strings.Contains(stderr, formatUnavailableMarker) || strings.Contains(err.Error(), formatUnavailableMarker) {
		return services.Wrap(services.ErrResourceUnavailable, "fetch", "download", s.target, err)
	}
	if detail := lastLine(stderr); detail != "" {
		return fmt.Errorf("yt-dlp: %w: %s", err, detail)
	}
	return fmt.Errorf("yt-dlp: %w", err)
}

type commandDownloader struct{}

func (commandDownloader) Download(ctx context.Context, binary, target, format, output string) (string, error) {
	cmd := goytdlp.New().
		SetExecutable(binary).
		NoPlaylist().
		NoProgress().
		NoPart().
		Format(format).
		Output(output)
	result, err := cmd.Run(ctx, target)
	if result != nil {
		return result.Stderr, err
	}
	return "", err
}

func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
