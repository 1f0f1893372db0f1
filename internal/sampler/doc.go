// Package sampler turns one fetched clip into an artifact pair: a lossless
// PNG frame and a PCM WAV slice, both anchored at the same offset and sharing
// a base name.
//
// Media access goes through the Decoder capability. The production decoder
// inspects clips with ffprobe and renders artifacts with ffmpeg; tests swap in
// fakes. Extract is atomic: if either artifact cannot be produced, any file
// the call already wrote is removed before the error is returned.
package sampler
