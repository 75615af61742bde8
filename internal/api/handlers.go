package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"echoscribe/internal/history"
	"echoscribe/internal/stt"
	"echoscribe/internal/upload"
	"echoscribe/internal/utils"
)

// Handler carries the request pipeline's dependencies. Everything is built
// once at startup and read-only afterwards; handlers share no other state.
type Handler struct {
	provider  stt.Provider
	store     history.Store
	uploadDir string
	log       zerolog.Logger
}

func NewHandler(provider stt.Provider, store history.Store, uploadDir string, log zerolog.Logger) *Handler {
	return &Handler{
		provider:  provider,
		store:     store,
		uploadDir: uploadDir,
		log:       log.With().Str("component", "api").Logger(),
	}
}

// uploadAndTranscribe handles POST /api/transcribe/upload.
func (h *Handler) uploadAndTranscribe(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			utils.Error(c, http.StatusBadRequest, "No audio file provided")
			return
		}
		h.log.Warn().Err(err).Msg("failed to read multipart form")
		utils.Error(c, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	declaredType := file.Header.Get("Content-Type")
	if err := upload.Validate(file.Filename, declaredType, file.Size); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open uploaded file")
		utils.Error(c, http.StatusInternalServerError, "failed to save audio file")
		return
	}
	defer src.Close()

	path, err := upload.SaveTemp(h.uploadDir, file.Filename, src)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to save uploaded file")
		utils.Error(c, http.StatusInternalServerError, "failed to save audio file")
		return
	}
	filename := filepath.Base(path)

	audio, err := os.ReadFile(path)
	if err != nil {
		h.log.Error().Err(err).Str("path", path).Msg("failed to read saved file")
		utils.Error(c, http.StatusInternalServerError, "failed to read audio file")
		return
	}

	mimeType := stt.ResolveMIME(file.Filename, declaredType)
	h.log.Info().
		Str("filename", filename).
		Int64("size", file.Size).
		Str("mime_type", mimeType).
		Msg("starting transcription")

	result, err := h.provider.Transcribe(c.Request.Context(), audio, mimeType)
	if err != nil {
		h.log.Warn().Err(err).Str("provider", h.provider.Name()).Msg("transcription failed")
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if strings.TrimSpace(result.Transcript) == "" {
		utils.Error(c, http.StatusInternalServerError, stt.ErrEmptyTranscript.Error())
		return
	}

	userID := c.PostForm("userId")
	if userID == "" {
		userID = "anonymous"
	}

	// Archival is best-effort: a storage failure never masks a successful
	// transcription. Disabled stores no-op here.
	var stored gin.H
	rec, err := h.store.Archive(c.Request.Context(), path, filename, result.Transcript, userID)
	if err != nil {
		h.log.Warn().Err(err).Str("filename", filename).Msg("failed to archive transcription")
	} else if rec != nil {
		stored = recordJSON(rec)
	}

	var duration interface{}
	if result.Duration > 0 {
		duration = result.Duration
	}

	utils.Success(c, gin.H{
		"transcription": result.Transcript,
		"duration":      duration,
		"filename":      filename,
		"stored":        stored,
	})
}

// getHistory handles GET /api/transcribe/history.
func (h *Handler) getHistory(c *gin.Context) {
	if !h.store.Enabled() {
		utils.SuccessList(c, []gin.H{}, "History feature requires Supabase configuration")
		return
	}

	userID := c.DefaultQuery("userId", "anonymous")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	records, err := h.store.List(c.Request.Context(), userID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to list history")
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve history")
		return
	}

	items := make([]gin.H, 0, len(records))
	for i := range records {
		items = append(items, recordJSON(&records[i]))
	}
	utils.SuccessList(c, items, "")
}

// health handles GET /api/transcribe/health.
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":                         true,
		"message":                         "Transcription service is healthy",
		"timestamp":                       time.Now().UTC().Format(time.RFC3339),
		h.provider.Name() + "_configured": true,
	})
}

func recordJSON(rec *history.Record) gin.H {
	return gin.H{
		"id":            rec.ID,
		"transcription": rec.Transcription,
		"audioUrl":      rec.AudioURL,
		"createdAt":     rec.CreatedAt,
		"filename":      rec.Filename,
	}
}
