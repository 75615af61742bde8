package stt

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whisperProviderFor(srv *httptest.Server) *WhisperProvider {
	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	return NewWhisperProviderWithClient(openai.NewClientWithConfig(cfg), zerolog.Nop())
}

func TestWhisperTranscribeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"task":"transcribe","language":"en","duration":4.2,"text":"hello world"}`)
	}))
	defer srv.Close()

	p := whisperProviderFor(srv)
	res, err := p.Transcribe(context.Background(), []byte("RIFF"), "audio/wav")
	require.NoError(t, err)

	assert.Equal(t, "hello world", res.Transcript)
	assert.Equal(t, 4.2, res.Duration)
	assert.Equal(t, float64(0), res.Confidence)
	assert.Equal(t, "whisper", res.Provider)
}

func TestWhisperBlankTranscriptIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"task":"transcribe","language":"en","duration":4.2,"text":"  "}`)
	}))
	defer srv.Close()

	p := whisperProviderFor(srv)
	_, err := p.Transcribe(context.Background(), []byte("RIFF"), "audio/wav")
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestWhisperErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		kind   Kind
	}{
		{"invalid key", http.StatusUnauthorized, "invalid_api_key", KindAuth},
		{"rate limited", http.StatusTooManyRequests, "rate_limit_exceeded", KindRateLimit},
		{"quota via 429", http.StatusTooManyRequests, "insufficient_quota", KindQuota},
		{"bad request", http.StatusBadRequest, "invalid_request_error", KindFormat},
		{"server failure", http.StatusInternalServerError, "server_error", KindUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				fmt.Fprintf(w, `{"error":{"message":"raw vendor message","type":"x","code":%q}}`, tc.code)
			}))
			defer srv.Close()

			p := whisperProviderFor(srv)
			_, err := p.Transcribe(context.Background(), []byte("RIFF"), "audio/wav")
			require.Error(t, err)

			var provErr *ProviderError
			require.ErrorAs(t, err, &provErr)
			assert.Equal(t, tc.kind, provErr.Kind)
			assert.Equal(t, "whisper", provErr.Provider)
			assert.NotEmpty(t, provErr.Message)
		})
	}
}
