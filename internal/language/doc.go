// Package language normalizes the language codes and names found in
// transcriber output (ISO 639-1, ISO 639-2, full English names) to the
// ISO 639-1 form stored with indexed chunks.
package language
