package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SendOTPRequest is the POST /send-otp body
type SendOTPRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"required"`
}

// VerifyOTPRequest is the POST /verify-otp body
type VerifyOTPRequest struct {
	Email      string `json:"email" binding:"required"`
	EnteredOTP string `json:"enteredOtp" binding:"required"`
}

// SendOTP handles POST /send-otp
func (h *Handlers) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.otp.Request(c.Request.Context(), req.Email, req.Username); err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "OTP sent"})
}

// VerifyOTP handles POST /verify-otp
func (h *Handlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email and enteredOtp are required")
		return
	}

	if err := h.otp.Verify(req.Email, req.EnteredOTP); err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "OTP verified"})
}
