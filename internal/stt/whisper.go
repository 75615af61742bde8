package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// WhisperProvider implements STT using the OpenAI Whisper API.
type WhisperProvider struct {
	client *openai.Client
	log    zerolog.Logger
}

// NewWhisperProvider creates a new OpenAI Whisper STT provider.
func NewWhisperProvider(apiKey string, log zerolog.Logger) *WhisperProvider {
	return &WhisperProvider{
		client: openai.NewClient(apiKey),
		log:    log.With().Str("provider", "whisper").Logger(),
	}
}

// NewWhisperProviderWithClient creates a Whisper provider around an existing
// client, letting tests point it at a fake API server.
func NewWhisperProviderWithClient(client *openai.Client, log zerolog.Logger) *WhisperProvider {
	return &WhisperProvider{client: client, log: log.With().Str("provider", "whisper").Logger()}
}

// Name returns the provider name.
func (p *WhisperProvider) Name() string {
	return "whisper"
}

// Transcribe sends the audio to the Whisper transcriptions endpoint. Whisper
// reports duration (verbose JSON) but no confidence score.
func (p *WhisperProvider) Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error) {
	p.log.Debug().Int("size", len(audio)).Str("mime_type", mimeType).Msg("sending audio to Whisper")

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       openai.Whisper1,
		FilePath:    "audio" + extForMIME(mimeType),
		Reader:      bytes.NewReader(audio),
		Language:    "en",
		Temperature: 0.2,
		Format:      openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, p.mapError(err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		p.log.Warn().Msg("Whisper returned an empty transcript")
		return nil, ErrEmptyTranscript
	}

	p.log.Info().
		Float64("duration", resp.Duration).
		Int("length", len(resp.Text)).
		Msg("transcription successful")

	return &Result{
		Transcript:  resp.Text,
		Duration:    resp.Duration,
		Provider:    p.Name(),
		RawResponse: resp.Text,
	}, nil
}

func (p *WhisperProvider) mapError(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return newProviderError(p.Name(), KindUnknown, fmt.Errorf("OpenAI API error: %w", err))
	}

	p.log.Warn().Int("status", apiErr.HTTPStatusCode).Msg("OpenAI API error")

	kind := kindFromStatus(apiErr.HTTPStatusCode)
	// OpenAI reports exhausted quota as a 429 with a dedicated error code.
	if apiErr.HTTPStatusCode == 429 && apiErr.Code == "insufficient_quota" {
		kind = KindQuota
	}
	return newProviderError(p.Name(), kind, fmt.Errorf("OpenAI API error: %w", err))
}
