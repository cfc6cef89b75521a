// Package transcript models the ordered, timestamped segments produced by
// the speech-to-text engine and loads them from WhisperX-style JSON or SRT
// files. Text is NFC-normalized on load so identical speech always yields
// identical bytes downstream.
package transcript
