package handlers

import (
	"errors"
	"net/http"

	"taskflow/backend/internal/logging"
	"taskflow/backend/internal/repositories"
	"taskflow/backend/internal/services"
	"taskflow/backend/internal/validation"
	"taskflow/backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type TaskHandler struct {
	taskService services.TaskService
	jobs        *worker.JobQueue
}

// NewTaskHandler wires the task endpoints. jobs may be nil when no worker
// is running; assignment notifications are then skipped.
func NewTaskHandler(taskService services.TaskService, jobs *worker.JobQueue) *TaskHandler {
	return &TaskHandler{taskService: taskService, jobs: jobs}
}

// GET /tasks
func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	input := validation.FilterInput{
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		Search:       c.Query("search"),
		AssignedToMe: c.Query("assigned_to_me") == "true",
		CreatedByMe:  c.Query("created_by_me") == "true",
		Overdue:      c.Query("overdue") == "true",
	}

	filter, err := validation.ValidateFilter(input)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	tasks, err := h.taskService.GetAllTasks(filter, userID)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	task, err := h.taskService.GetTaskByID(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input validation.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(input, userID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	if h.jobs != nil && task.AssignedToID != nil {
		h.enqueueAssignment(task.ID.String(), task.AssignedToID.String())
	}

	c.JSON(http.StatusCreated, task)
}

// PATCH /tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	var input validation.UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.UpdateTask(id, input)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	if h.jobs != nil && input.AssignedToID.Set && task.AssignedToID != nil {
		h.enqueueAssignment(task.ID.String(), task.AssignedToID.String())
	}

	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	if err := h.taskService.DeleteTask(id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted successfully"})
}

// enqueueAssignment is best-effort: the task write already succeeded, so a
// failed enqueue is logged and the request still succeeds.
func (h *TaskHandler) enqueueAssignment(taskID, userID string) {
	err := h.jobs.Enqueue("notifications", worker.JobTypeTaskAssigned, map[string]interface{}{
		"task_id": taskID,
		"user_id": userID,
	})
	if err != nil {
		logging.Logger.WithError(err).WithField("task_id", taskID).
			Error("failed to enqueue assignment notification")
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	str, ok := value.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.FromString(str)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func handleTaskError(c *gin.Context, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": verr.Fields,
		})
	case errors.Is(err, repositories.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to process task request",
		})
	}
}
