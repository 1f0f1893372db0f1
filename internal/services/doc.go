// Package services defines shared utilities consumed by the pipeline stages
// and the external fetch/decode integrations.
//
// Key responsibilities:
//   - Context helpers that stamp item indexes, stage names, and run
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so every stage reports
//     failures with the same kinds (resource unavailable, fetch failed, no
//     audio track, extraction failed, invalid path).
//
// Integrations that talk to external tools live in sub-packages (youtube,
// ytdlp) and translate their failures into these markers.
package services
