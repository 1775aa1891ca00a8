// Package stt produces word-level timings for short audio windows.
package stt

import "context"

// Word is a single recognized word with times in seconds relative to
// the start of the audio file it came from.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Engine recognizes speech in an audio file and reports per-word timings.
type Engine interface {
	TranscribeWords(ctx context.Context, audioPath string) ([]Word, error)
}
