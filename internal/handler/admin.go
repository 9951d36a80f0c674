package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"drawlab/internal/admin"
	"drawlab/internal/attendance"
	"drawlab/internal/content"
)

// Admin dispatches the staff actions. Every action except login carries
// an adminToken that must match the live single-admin session.
func (h *Handler) Admin(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, err)
		return
	}
	var env actionEnvelope
	if err := decode(body, &env); err != nil {
		badRequest(c, err)
		return
	}

	switch env.Action {
	case "login":
		h.adminLogin(c, body)
	case "verify":
		h.adminVerify(c, body)
	case "logout":
		h.adminLogout(c, body)
	case "get_students_by_branch":
		h.adminStudentsByBranch(c, body)
	case "get_logged_in_students_by_branch":
		h.adminLoggedInByBranch(c, body)
	case "get_attendance_by_branch_month":
		h.adminAttendanceByBranchMonth(c, body)
	case "mark_attendance":
		h.adminMarkAttendance(c, body)
	case "unmark_attendance":
		h.adminUnmarkAttendance(c, body)
	case "remove_student_session":
		h.adminRemoveStudentSession(c, body)
	case "insert_content":
		h.adminInsertContent(c, body)
	case "delete_content":
		h.adminDeleteContent(c, body)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

// requireAdmin resolves an adminToken or writes 401.
func (h *Handler) requireAdmin(c *gin.Context, token string) (string, bool) {
	email, err := h.admins.Verify(c.Request.Context(), token)
	if err != nil {
		unauthorized(c)
		return "", false
	}
	return email, true
}

func (h *Handler) adminLogin(c *gin.Context, body []byte) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	token, expiresAt, err := h.admins.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, admin.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	case errors.Is(err, admin.ErrLockHeld):
		c.JSON(http.StatusConflict, gin.H{"error": "another admin session is active"})
		return
	case err != nil:
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"adminToken": token, "expires_at": expiresAt})
}

func (h *Handler) adminVerify(c *gin.Context, body []byte) {
	var req struct {
		AdminToken string `json:"adminToken" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	email, err := h.admins.Verify(c.Request.Context(), req.AdminToken)
	if err != nil {
		unauthorized(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "email": email})
}

func (h *Handler) adminLogout(c *gin.Context, body []byte) {
	var req struct {
		AdminToken string `json:"adminToken" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.admins.Logout(c.Request.Context(), req.AdminToken); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

func (h *Handler) adminStudentsByBranch(c *gin.Context, body []byte) {
	var req struct {
		AdminToken string `json:"adminToken" binding:"required"`
		Branch     string `json:"branch" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.requireAdmin(c, req.AdminToken); !ok {
		return
	}
	students, err := h.students.StudentsByBranch(c.Request.Context(), req.Branch)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (h *Handler) adminLoggedInByBranch(c *gin.Context, body []byte) {
	var req struct {
		AdminToken string `json:"adminToken" binding:"required"`
		Branch     string `json:"branch" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.requireAdmin(c, req.AdminToken); !ok {
		return
	}
	emails, err := h.students.LoggedInStudents(c.Request.Context(), req.Branch)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": emails})
}

func (h *Handler) adminAttendanceByBranchMonth(c *gin.Context, body []byte) {
	var req struct {
		AdminToken string `json:"adminToken" binding:"required"`
		Branch     string `json:"branch" binding:"required"`
		Year       int    `json:"year" binding:"required"`
		Month      int    `json:"month" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.requireAdmin(c, req.AdminToken); !ok {
		return
	}
	records, err := h.att.ByBranchMonth(c.Request.Context(), req.Branch, req.Year, req.Month)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": records})
}

func (h *Handler) adminMarkAttendance(c *gin.Context, body []byte) {
	var req struct {
		AdminToken   string `json:"adminToken" binding:"required"`
		StudentEmail string `json:"student_email" binding:"required,email"`
		Branch       string `json:"branch" binding:"required"`
		Day          string `json:"day" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	email, ok := h.requireAdmin(c, req.AdminToken)
	if !ok {
		return
	}
	rec, err := h.att.Mark(c.Request.Context(), req.StudentEmail, req.Branch, req.Day, email)
	switch {
	case errors.Is(err, attendance.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "attendance already marked for that day"})
		return
	case errors.Is(err, attendance.ErrBadDay):
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
		return
	case err != nil:
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attendance": rec})
}

func (h *Handler) adminUnmarkAttendance(c *gin.Context, body []byte) {
	var req struct {
		AdminToken   string `json:"adminToken" binding:"required"`
		StudentEmail string `json:"student_email" binding:"required,email"`
		Day          string `json:"day" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.requireAdmin(c, req.AdminToken); !ok {
		return
	}
	if err := h.att.Unmark(c.Request.Context(), req.StudentEmail, req.Day); err != nil {
		if errors.Is(err, attendance.ErrBadDay) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (h *Handler) adminRemoveStudentSession(c *gin.Context, body []byte) {
	var req struct {
		AdminToken   string `json:"adminToken" binding:"required"`
		StudentEmail string `json:"student_email" binding:"required,email"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.requireAdmin(c, req.AdminToken); !ok {
		return
	}
	removed, err := h.students.RemoveSessions(c.Request.Context(), req.StudentEmail)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed_sessions": removed})
}

func (h *Handler) adminInsertContent(c *gin.Context, body []byte) {
	var req struct {
		AdminToken  string `json:"adminToken" binding:"required"`
		Branch      string `json:"branch" binding:"required"`
		Semester    int    `json:"semester" binding:"required,min=1,max=8"`
		DrawingType string `json:"drawing_type" binding:"required"`
		ContentType string `json:"content_type" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		URL         string `json:"url" binding:"required,url"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	email, ok := h.requireAdmin(c, req.AdminToken)
	if !ok {
		return
	}
	if !content.ValidDrawingType(req.DrawingType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown drawing type"})
		return
	}
	if !content.ValidContentType(req.ContentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown content type"})
		return
	}
	item, err := h.content.Insert(c.Request.Context(), content.Item{
		Branch:      req.Branch,
		Semester:    req.Semester,
		DrawingType: req.DrawingType,
		ContentType: req.ContentType,
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		UploadedBy:  email,
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"content": item})
}

func (h *Handler) adminDeleteContent(c *gin.Context, body []byte) {
	var req struct {
		AdminToken string `json:"adminToken" binding:"required"`
		ID         string `json:"id" binding:"required,uuid"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.requireAdmin(c, req.AdminToken); !ok {
		return
	}
	if err := h.content.Delete(c.Request.Context(), req.ID); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
