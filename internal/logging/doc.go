// Package logging constructs the slog loggers used across earmark. The
// console handler prints "TIME LEVEL component: msg k=v" lines; the JSON
// handler emits machine-readable records with ts/level/msg keys.
package logging
