package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"

	"drawlab/internal/admin"
	"drawlab/internal/attendance"
	"drawlab/internal/content"
	"drawlab/internal/evaluation"
	"drawlab/internal/practice"
	"drawlab/internal/storage"
	"drawlab/internal/student"
)

// Handler owns the HTTP surface: student auth actions, the admin API,
// the evaluation proxy, content browsing, uploads and test history.
type Handler struct {
	log      zerolog.Logger
	students *student.Service
	admins   *admin.Service
	att      *attendance.Service
	content  *content.Repository
	history  *practice.HistoryRepository
	eval     *evaluation.Client
	store    *storage.Client // nil when object storage is not configured
}

// New creates a handler.
func New(
	log zerolog.Logger,
	students *student.Service,
	admins *admin.Service,
	att *attendance.Service,
	contentRepo *content.Repository,
	history *practice.HistoryRepository,
	eval *evaluation.Client,
	store *storage.Client,
) *Handler {
	return &Handler{
		log:      log,
		students: students,
		admins:   admins,
		att:      att,
		content:  contentRepo,
		history:  history,
		eval:     eval,
		store:    store,
	}
}

// Healthz reports process liveness; dependency checks live in cmd/api.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// decode unmarshals an action body into a typed request and runs the
// binding validators, so each action gets the same validation gin
// applies to whole-body binds.
func decode(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(dst)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
}

func internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
