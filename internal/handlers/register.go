package handlers

import (
	"errors"
	"net/http"

	"taskflow/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type RegisterHandler struct {
	registerService services.RegisterService
}

func NewRegisterHandler(registerService services.RegisterService) *RegisterHandler {
	return &RegisterHandler{registerService: registerService}
}

// POST /auth/register
func (h *RegisterHandler) Registration(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.registerService.RegisterUser(req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Registration failed",
				"details": "An account with this email already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Registration failed",
			"details": "An unexpected error occurred. Please try again later.",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Your account has been created successfully.",
		"user":    user,
	})
}
