// Package config loads, normalizes, and validates clipset configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLIPSET_FFMPEG. The Config type centralizes every knob the CLI and the
// pipeline need, so the videos/output/dataset directories, the fetch backend,
// and the sampling format are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
