package stt

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echoscribe/internal/config"
)

func TestNewProviderSelection(t *testing.T) {
	t.Run("deepgram", func(t *testing.T) {
		p, err := NewProvider(&config.Config{Provider: config.ProviderDeepgram, DeepgramKey: "k", DeepgramURL: "https://api.deepgram.com"}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "deepgram", p.Name())
	})

	t.Run("whisper", func(t *testing.T) {
		p, err := NewProvider(&config.Config{Provider: config.ProviderWhisper, OpenAIKey: "k"}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "whisper", p.Name())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewProvider(&config.Config{Provider: "assemblyai"}, zerolog.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported STT provider")
	})
}
