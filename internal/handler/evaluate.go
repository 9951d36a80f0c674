package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"drawlab/internal/content"
	"drawlab/internal/evaluation"
	"drawlab/internal/practice"
)

type evaluateRequest struct {
	UserDrawing    string `json:"userDrawing" binding:"required"`
	ReferenceImage string `json:"referenceImage" binding:"required"`
	DrawingType    string `json:"drawingType" binding:"required"`
}

// Evaluate proxies a drawing comparison to the AI backend and returns
// the structured result. No retries and no queue: one request, one
// verdict.
func (h *Handler) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !content.ValidDrawingType(req.DrawingType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown drawing type"})
		return
	}

	res, err := h.eval.Evaluate(c.Request.Context(), req.UserDrawing, req.ReferenceImage, req.DrawingType)
	switch {
	case errors.Is(err, evaluation.ErrNoCredential):
		evaluationsTotal.WithLabelValues("no_credential").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "evaluation credential is not configured"})
		return
	case errors.Is(err, evaluation.ErrRateLimited):
		evaluationsTotal.WithLabelValues("rate_limited").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "evaluation backend is rate limited, try again shortly"})
		return
	case errors.Is(err, evaluation.ErrQuotaExceeded):
		evaluationsTotal.WithLabelValues("quota_exceeded").Inc()
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "evaluation quota exhausted"})
		return
	case err != nil:
		evaluationsTotal.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Str("drawing_type", req.DrawingType).Msg("evaluation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "evaluation backend unavailable"})
		return
	}

	evaluationsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, res)
}

type recommendRequest struct {
	DrawingType string   `json:"drawing_type" binding:"required"`
	Score       *float64 `json:"score"`
	Errors      []string `json:"errors"`
	Feedback    string   `json:"feedback"`
}

// RecommendVideos extracts keywords from an evaluation's errors and
// feedback and returns the best matching tutorial videos. Scores of 8
// and above get no recommendations; there is nothing to fix.
func (h *Handler) RecommendVideos(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Score != nil && *req.Score >= 8 {
		c.JSON(http.StatusOK, gin.H{"keywords": []string{}, "videos": []content.Item{}})
		return
	}
	videos, err := h.content.VideosByDrawingType(c.Request.Context(), req.DrawingType)
	if err != nil {
		internalError(c, err)
		return
	}
	keywords := practice.ExtractKeywords(req.Errors, req.Feedback)
	ranked := practice.RankVideos(videos, keywords)
	c.JSON(http.StatusOK, gin.H{"keywords": keywords, "videos": ranked})
}
