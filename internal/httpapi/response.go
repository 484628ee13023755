package httpapi

import (
	"errors"
	"net/http"

	"github.com/Mbarathm345672005/docuflow/internal/otp"
	"github.com/Mbarathm345672005/docuflow/internal/workflow"
	"github.com/gin-gonic/gin"
)

// Response is the standard JSON envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}

// respondWorkflowError maps engine errors onto HTTP statuses. Storage
// and persistence failures come back as a generic server error so
// internals never leak to clients.
func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, workflow.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrAuth):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, otp.ErrMismatch):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, otp.ErrInvalidCode):
		respondError(c, http.StatusBadRequest, "Invalid OTP")
	case errors.Is(err, workflow.ErrStorage):
		respondError(c, http.StatusInternalServerError, "document storage failed")
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
