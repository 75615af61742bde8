package stt

import "context"

// Provider defines the interface for speech-to-text providers.
type Provider interface {
	// Transcribe transcribes a whole audio clip and returns the result.
	// mimeType should be the resolved audio MIME type (see ResolveMIME).
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error)

	// Name returns the name of the provider (e.g., "deepgram", "whisper").
	Name() string
}
