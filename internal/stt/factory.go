package stt

import (
	"fmt"

	"github.com/rs/zerolog"

	"echoscribe/internal/config"
)

// NewProvider creates the STT provider selected by the configuration.
// Config validation already guarantees the selected provider has a key.
func NewProvider(cfg *config.Config, log zerolog.Logger) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderDeepgram:
		log.Info().Msg("creating Deepgram STT provider")
		return NewDeepgramProvider(cfg.DeepgramKey, cfg.DeepgramURL, log), nil
	case config.ProviderWhisper:
		log.Info().Msg("creating Whisper STT provider")
		return NewWhisperProvider(cfg.OpenAIKey, log), nil
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: deepgram, whisper", cfg.Provider)
	}
}
