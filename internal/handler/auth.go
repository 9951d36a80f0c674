package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"drawlab/internal/student"
)

type actionEnvelope struct {
	Action string `json:"action"`
}

// Auth dispatches the student account actions. The body carries an
// "action" discriminator plus the fields that action needs.
func (h *Handler) Auth(c *gin.Context) {
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
	case "register":
		h.authRegister(c, body)
	case "login":
		h.authLogin(c, body)
	case "verify":
		h.authVerify(c, body)
	case "logout":
		h.authLogout(c, body)
	case "request_reset":
		h.authRequestReset(c, body)
	case "reset_password":
		h.authResetPassword(c, body)
	case "get_profile":
		h.authGetProfile(c, body)
	case "update_profile":
		h.authUpdateProfile(c, body)
	case "add_points":
		h.authAddPoints(c, body)
	case "get_logged_in_students":
		h.authLoggedIn(c, body)
	case "get_attendance":
		h.authAttendance(c, body)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

// requireStudent resolves a body token to a student email or writes 401.
func (h *Handler) requireStudent(c *gin.Context, token string) (string, bool) {
	acct, err := h.students.Verify(c.Request.Context(), token)
	if err != nil {
		unauthorized(c)
		return "", false
	}
	return acct.Email, true
}

func (h *Handler) authRegister(c *gin.Context, body []byte) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Branch   string `json:"branch" binding:"required"`
		FullName string `json:"full_name" binding:"required"`
		RollNo   *int   `json:"roll_no"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	acct, sess, err := h.students.Register(c.Request.Context(), student.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Branch:   req.Branch,
		FullName: req.FullName,
		RollNo:   req.RollNo,
	})
	switch {
	case errors.Is(err, student.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	case errors.Is(err, student.ErrInvalidBranch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown branch"})
		return
	case err != nil:
		internalError(c, err)
		return
	}
	resp := gin.H{"profile": acct}
	if sess != nil {
		resp["token"] = sess.Token
		resp["expires_at"] = sess.ExpiresAt
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) authLogin(c *gin.Context, body []byte) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	acct, sess, err := h.students.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, student.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"profile":    acct,
	})
}

func (h *Handler) authVerify(c *gin.Context, body []byte) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	acct, err := h.students.Verify(c.Request.Context(), req.Token)
	if err != nil {
		unauthorized(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "profile": acct})
}

func (h *Handler) authLogout(c *gin.Context, body []byte) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.students.Logout(c.Request.Context(), req.Token); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

func (h *Handler) authRequestReset(c *gin.Context, body []byte) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	token, err := h.students.RequestReset(c.Request.Context(), req.Email)
	if errors.Is(err, student.ErrNotFound) {
		// Same response as success so the endpoint does not leak which
		// emails are registered.
		c.JSON(http.StatusOK, gin.H{"requested": true})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requested": true, "token": token})
}

func (h *Handler) authResetPassword(c *gin.Context, body []byte) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	err := h.students.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if errors.Is(err, student.ErrResetInvalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reset token is invalid, used or expired"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": true})
}

func (h *Handler) authGetProfile(c *gin.Context, body []byte) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	email, ok := h.requireStudent(c, req.Token)
	if !ok {
		return
	}
	acct, err := h.students.GetProfile(c.Request.Context(), email)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": acct})
}

func (h *Handler) authUpdateProfile(c *gin.Context, body []byte) {
	var req struct {
		Token     string `json:"token" binding:"required"`
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
		Interests string `json:"interests"`
		Goals     string `json:"goals"`
		ExtraInfo string `json:"extra_info"`
		RollNo    *int   `json:"roll_no"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	email, ok := h.requireStudent(c, req.Token)
	if !ok {
		return
	}
	acct, err := h.students.UpdateProfile(c.Request.Context(), email, student.ProfileUpdate{
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Interests: req.Interests,
		Goals:     req.Goals,
		ExtraInfo: req.ExtraInfo,
		RollNo:    req.RollNo,
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": acct})
}

func (h *Handler) authAddPoints(c *gin.Context, body []byte) {
	var req struct {
		Token string   `json:"token" binding:"required"`
		Score *float64 `json:"score" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	email, ok := h.requireStudent(c, req.Token)
	if !ok {
		return
	}
	awarded, total, err := h.students.AddPoints(c.Request.Context(), email, *req.Score)
	if errors.Is(err, student.ErrScoreTooLow) {
		c.JSON(http.StatusOK, gin.H{"awarded": 0, "total": total})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	pointsAwardedTotal.Add(float64(awarded))
	c.JSON(http.StatusOK, gin.H{"awarded": awarded, "total": total})
}

func (h *Handler) authLoggedIn(c *gin.Context, body []byte) {
	var req struct {
		Token  string `json:"token" binding:"required"`
		Branch string `json:"branch" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.requireStudent(c, req.Token); !ok {
		return
	}
	emails, err := h.students.LoggedInStudents(c.Request.Context(), req.Branch)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": emails})
}

func (h *Handler) authAttendance(c *gin.Context, body []byte) {
	var req struct {
		Token string `json:"token" binding:"required"`
		Year  int    `json:"year" binding:"required"`
		Month int    `json:"month" binding:"required"`
	}
	if err := decode(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	email, ok := h.requireStudent(c, req.Token)
	if !ok {
		return
	}
	records, err := h.att.ByStudentMonth(c.Request.Context(), email, req.Year, req.Month)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": records})
}
