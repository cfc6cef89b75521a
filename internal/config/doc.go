// Package config loads, normalizes, and validates the earmark TOML
// configuration. All tunables that are corpus- or domain-dependent
// (similarity floor, certainty bar, stitching tolerance, chunk sizes)
// live here rather than in code.
package config
