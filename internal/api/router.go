package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the transcription API on the engine.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	grp := r.Group("/api/transcribe")
	{
		grp.POST("/upload", h.uploadAndTranscribe)
		grp.GET("/history", h.getHistory)
		grp.GET("/health", h.health)
	}
}
