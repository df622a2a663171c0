package handlers

import (
	"net/http"

	"taskflow/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	taskService services.TaskService
}

func NewDashboardHandler(taskService services.TaskService) *DashboardHandler {
	return &DashboardHandler{taskService: taskService}
}

// GET /dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	stats, err := h.taskService.GetDashboardStats(userID)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
