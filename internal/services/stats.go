package services

import (
	"time"

	"taskflow/backend/internal/models"

	"github.com/gofrs/uuid"
)

// ComputeStats derives the dashboard counts from an in-memory task set. It
// is a pure function: the caller decides which tasks are in scope and what
// "now" is. The six counts are independent, so a single task can
// contribute to several of them.
func ComputeStats(tasks []models.Task, currentUserID uuid.UUID, now time.Time) models.DashboardStats {
	stats := models.DashboardStats{TotalTasks: len(tasks)}

	for i := range tasks {
		task := &tasks[i]

		if task.Status == models.StatusCompleted {
			stats.CompletedTasks++
		}
		if task.Status == models.StatusInProgress {
			stats.InProgressTasks++
		}
		if task.Overdue(now) {
			stats.OverdueTasks++
		}
		if task.AssignedToID != nil && *task.AssignedToID == currentUserID {
			stats.AssignedToMe++
		}
		if task.CreatorID == currentUserID {
			stats.CreatedByMe++
		}
	}

	return stats
}
