package httpapi

import (
	"net/http"

	"github.com/Mbarathm345672005/docuflow/internal/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SignupRequest is the POST /api/signup body
type SignupRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

// LoginRequest is the POST /api/login and /admin-login body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ResetPasswordRequest is the POST /reset-password body
type ResetPasswordRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// Signup handles POST /api/signup
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "missing required fields")
		return
	}

	user, err := h.auth.Signup(auth.SignupRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Role:      req.Role,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondCreated(c, gin.H{"username": user.Username, "role": user.Role})
}

// Login handles POST /api/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "missing required fields")
		return
	}

	session, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondOK(c, session)
}

// AdminLogin handles POST /admin-login
func (h *Handlers) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "missing required fields")
		return
	}

	session, err := h.auth.AdminLogin(req.Username, req.Password)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondOK(c, session)
}

// ResetPassword handles POST /reset-password
func (h *Handlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "missing required fields")
		return
	}

	if err := h.auth.ResetPassword(req.Username, req.Email, req.NewPassword); err != nil {
		respondWorkflowError(c, err)
		return
	}
	h.logger.Info("Password reset requested", zap.String("username", req.Username))
	respondOK(c, gin.H{"message": "password updated"})
}
