// Package ffmpeg renders the two ffmpeg invocations the sampler needs: a
// single lossless PNG frame at an offset and a PCM WAV slice starting at the
// same offset.
//
// Argument graphs are assembled with github.com/u2takey/ffmpeg-go and then
// executed through a swappable exec seam so tests can observe or stub the
// command line without an ffmpeg install.
package ffmpeg
