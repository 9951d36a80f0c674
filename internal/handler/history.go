package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"drawlab/internal/practice"
)

type historyRequest struct {
	UserIdentifier  string   `json:"user_identifier" binding:"required"`
	DrawingType     string   `json:"drawing_type" binding:"required"`
	DurationSeconds int      `json:"duration_seconds" binding:"min=0"`
	Score           float64  `json:"score" binding:"min=0,max=10"`
	Accuracy        float64  `json:"accuracy" binding:"min=0,max=100"`
	Errors          []string `json:"errors"`
	Feedback        string   `json:"feedback"`
}

// SaveHistory records one completed test. Anonymous users supply a
// client-generated identifier, logged-in users their email.
func (h *Handler) SaveHistory(c *gin.Context) {
	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.history.Insert(c.Request.Context(), practice.HistoryItem{
		UserIdentifier:  req.UserIdentifier,
		DrawingType:     req.DrawingType,
		DurationSeconds: req.DurationSeconds,
		Score:           req.Score,
		Accuracy:        req.Accuracy,
		Errors:          req.Errors,
		Feedback:        req.Feedback,
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"history": item})
}

// ListHistory returns a user's past test results, newest first.
func (h *Handler) ListHistory(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user query parameter is required"})
		return
	}
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	items, err := h.history.ListByUser(c.Request.Context(), user, limit)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": items})
}

// ExportHistory streams one test result as a downloadable JSON file.
func (h *Handler) ExportHistory(c *gin.Context) {
	id := c.Param("id")
	item, err := h.history.Get(c.Request.Context(), id)
	if errors.Is(err, practice.ErrHistoryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "test result not found"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	data, filename, err := practice.ExportSummary(item)
	if err != nil {
		internalError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}
