// Package ytdlp downloads clips by driving the yt-dlp executable through
// github.com/lrstanley/go-ytdlp.
//
// It implements fetch.Resolver for deployments where the native YouTube
// client is blocked or the identifiers point at other sites yt-dlp supports.
// Resolution is deferred to download time: yt-dlp is asked for a progressive
// rendition at the requested height, and its "format is not available"
// failure is reported as services.ErrResourceUnavailable.
package ytdlp
