// Package ffprobe runs ffprobe against fetched clips and decodes the few
// fields the sampler needs: stream kinds, resolution and duration.
package ffprobe
