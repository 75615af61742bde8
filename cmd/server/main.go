package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"echoscribe/internal/api"
	"echoscribe/internal/config"
	"echoscribe/internal/history"
	"echoscribe/internal/logging"
	"echoscribe/internal/stt"
	"echoscribe/internal/upload"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	log := logging.New("echoscribe")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	provider, err := stt.NewProvider(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create STT provider")
	}

	var store history.Store = history.Disabled{}
	if cfg.HistoryEnabled() {
		store = history.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, log)
		log.Info().Msg("Supabase history store enabled")
	} else {
		log.Info().Msg("SUPABASE_URL/SUPABASE_KEY not set, history features disabled")
	}

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(api.RecoveryMiddleware(log))
	r.Use(api.CORSMiddleware())
	// Allow for multipart framing overhead on top of the audio ceiling.
	r.Use(api.BodyLimitMiddleware(upload.MaxFileSize + 1<<20))

	h := api.NewHandler(provider, store, cfg.UploadDir, log)
	api.RegisterRoutes(r, h)

	log.Info().Str("port", cfg.Port).Str("provider", provider.Name()).Msg("echoscribe backend running")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
