// Package config loads, normalizes, and validates playlistopt configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// PLAYLISTOPT_DATA_DIR and PLAYLISTOPT_SOLVER. The Config type centralizes
// every knob the pipeline needs: where the input tables live, how ratings are
// normalized, how neighbours are found, which constraints shape the playlist
// model, and which solver backend searches it.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical enum values, and clear validation errors.
package config
