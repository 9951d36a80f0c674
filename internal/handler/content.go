package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"drawlab/internal/content"
)

// ListContent returns reference material filtered by query parameters.
// Missing parameters match everything.
func (h *Handler) ListContent(c *gin.Context) {
	f := content.Filter{
		Branch:      c.Query("branch"),
		DrawingType: c.Query("drawing_type"),
		ContentType: c.Query("content_type"),
	}
	if s := c.Query("semester"); s != "" {
		sem, err := strconv.Atoi(s)
		if err != nil || sem < 1 || sem > 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "semester must be 1..8"})
			return
		}
		f.Semester = sem
	}
	items, err := h.content.List(c.Request.Context(), f)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": items})
}

// ListVideos returns the tutorial videos for a drawing type.
func (h *Handler) ListVideos(c *gin.Context) {
	dt := c.Query("drawing_type")
	if dt != "" && !content.ValidDrawingType(dt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown drawing type"})
		return
	}
	videos, err := h.content.VideosByDrawingType(c.Request.Context(), dt)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// maxUploadBytes caps drawing uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// Upload stores an image in object storage and returns its public URL.
// Accepts either a multipart "file" field or a JSON body with a base64
// data URL.
func (h *Handler) Upload(c *gin.Context) {
	if h.store == nil {
		uploadsTotal.WithLabelValues("unconfigured").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage is not configured"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	var url string
	var err error
	if file, header, ferr := c.Request.FormFile("file"); ferr == nil {
		defer file.Close()
		data, rerr := io.ReadAll(file)
		if rerr != nil {
			uploadsTotal.WithLabelValues("error").Inc()
			badRequest(c, rerr)
			return
		}
		url, err = h.store.UploadBytes(c.Request.Context(), data, header.Filename, header.Header.Get("Content-Type"))
	} else {
		var req struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&req); berr != nil {
			badRequest(c, berr)
			return
		}
		url, err = h.store.UploadDataURL(c.Request.Context(), req.Data)
	}
	if err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Msg("upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	uploadsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
