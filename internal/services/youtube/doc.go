// Package youtube resolves and downloads clips with the native Go client
// github.com/kkdai/youtube/v2.
//
// It implements fetch.Resolver: an identifier (bare video ID or watch URL)
// is resolved to the progressive mp4 rendition at the requested quality that
// still carries audio, and the stream is copied to disk on Save. Videos with
// no such rendition report services.ErrResourceUnavailable.
package youtube
