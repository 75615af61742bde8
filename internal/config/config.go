package config

import (
	"fmt"
	"os"
	"strings"
)

// Provider names accepted in STT_PROVIDER.
const (
	ProviderDeepgram = "deepgram"
	ProviderWhisper  = "whisper"
)

type Config struct {
	Port        string
	Provider    string
	DeepgramKey string
	DeepgramURL string
	OpenAIKey   string

	// Supabase credentials are optional. When either is empty the history
	// feature is disabled and the server runs transcription-only.
	SupabaseURL string
	SupabaseKey string

	UploadDir string
}

// Load loads configuration from environment variables. It fails when the
// selected transcription provider has no usable API key, so a misconfigured
// process refuses to start instead of failing on the first request.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Provider:    strings.ToLower(getEnv("STT_PROVIDER", ProviderDeepgram)),
		DeepgramKey: os.Getenv("DEEPGRAM_API_KEY"),
		DeepgramURL: getEnv("DEEPGRAM_API_URL", "https://api.deepgram.com"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_KEY"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
	}

	switch cfg.Provider {
	case ProviderDeepgram:
		if cfg.DeepgramKey == "" {
			return nil, fmt.Errorf("DEEPGRAM_API_KEY is required when STT_PROVIDER=deepgram. Set it as an environment variable or in a .env file")
		}
	case ProviderWhisper:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when STT_PROVIDER=whisper. Set it as an environment variable or in a .env file")
		}
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: deepgram, whisper", cfg.Provider)
	}

	return cfg, nil
}

// HistoryEnabled reports whether Supabase credentials are present.
func (c *Config) HistoryEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
