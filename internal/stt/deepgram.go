package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DeepgramProvider implements STT using the Deepgram prerecorded API.
type DeepgramProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewDeepgramProvider creates a new Deepgram STT provider. baseURL is the API
// root (https://api.deepgram.com in production; overridable for tests).
func NewDeepgramProvider(apiKey, baseURL string, log zerolog.Logger) *DeepgramProvider {
	return &DeepgramProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 90 * time.Second},
		log:     log.With().Str("provider", "deepgram").Logger(),
	}
}

// Name returns the provider name.
func (p *DeepgramProvider) Name() string {
	return "deepgram"
}

// deepgramResponse is the prerecorded /v1/listen response shape.
type deepgramResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends the audio to Deepgram's prerecorded endpoint and returns
// the best alternative of the first channel.
func (p *DeepgramProvider) Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error) {
	q := url.Values{}
	q.Set("model", "nova-2")
	q.Set("language", "en")
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	endpoint := p.baseURL + "/v1/listen?" + q.Encode()

	p.log.Debug().Int("size", len(audio)).Str("mime_type", mimeType).Msg("sending audio to Deepgram")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.apiKey)
	req.Header.Set("Content-Type", mimeType)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Deepgram: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.log.Warn().Int("status", resp.StatusCode).Str("body", preview(body)).Msg("Deepgram API error")
		raw := fmt.Errorf("deepgram API returned status %d: %s", resp.StatusCode, string(body))
		return nil, newProviderError(p.Name(), kindFromStatus(resp.StatusCode), raw)
	}

	var dgResp deepgramResponse
	if err := json.Unmarshal(body, &dgResp); err != nil {
		p.log.Warn().Str("body", preview(body)).Msg("failed to parse Deepgram response")
		raw := fmt.Errorf("failed to parse Deepgram response: %w", err)
		return nil, newProviderError(p.Name(), KindUnknown, raw)
	}

	if len(dgResp.Results.Channels) == 0 || len(dgResp.Results.Channels[0].Alternatives) == 0 {
		raw := fmt.Errorf("invalid response structure from Deepgram: %s", preview(body))
		return nil, newProviderError(p.Name(), KindUnknown, raw)
	}

	alt := dgResp.Results.Channels[0].Alternatives[0]
	if strings.TrimSpace(alt.Transcript) == "" {
		p.log.Warn().Msg("Deepgram returned an empty transcript")
		return nil, ErrEmptyTranscript
	}

	p.log.Info().
		Float64("confidence", alt.Confidence).
		Float64("duration", dgResp.Metadata.Duration).
		Int("length", len(alt.Transcript)).
		Msg("transcription successful")

	return &Result{
		Transcript:  alt.Transcript,
		Confidence:  alt.Confidence,
		Duration:    dgResp.Metadata.Duration,
		Provider:    p.Name(),
		RawResponse: string(body),
	}, nil
}

// preview truncates a response body for logging.
func preview(body []byte) string {
	s := string(body)
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
