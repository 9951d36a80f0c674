package handler

import (
	"github.com/gin-gonic/gin"
)

// Register wires the v1 routes onto the engine. uploadAuth gates the
// upload endpoint; everything else authenticates inside the action
// bodies or is public read.
func (h *Handler) Register(r *gin.Engine, uploadAuth gin.HandlerFunc) {
	v1 := r.Group("/v1")

	v1.POST("/auth", h.Auth)
	v1.POST("/admin", h.Admin)
	v1.POST("/evaluate", h.Evaluate)

	v1.GET("/content", h.ListContent)
	v1.GET("/videos", h.ListVideos)
	v1.POST("/videos/recommend", h.RecommendVideos)

	v1.POST("/upload", uploadAuth, h.Upload)

	v1.POST("/history", h.SaveHistory)
	v1.GET("/history", h.ListHistory)
	v1.GET("/history/:id/export", h.ExportHistory)
}
