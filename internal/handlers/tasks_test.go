package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskflow/backend/internal/handlers"
	"taskflow/backend/internal/models"
	"taskflow/backend/internal/repositories"
	"taskflow/backend/internal/services"
	"taskflow/backend/internal/validation"
	"taskflow/backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

type MockTaskService struct {
	shouldReturnError bool
	returnNotFound    bool
	tasks             []models.Task
	lastFilter        *models.TaskFilter
}

func (m *MockTaskService) GetAllTasks(filter *models.TaskFilter, currentUserID uuid.UUID) ([]models.Task, error) {
	if m.shouldReturnError {
		return nil, &services.ServiceError{Message: "failed to fetch tasks"}
	}
	m.lastFilter = filter
	return m.tasks, nil
}

func (m *MockTaskService) GetTaskByID(id uuid.UUID) (*models.Task, error) {
	if m.shouldReturnError {
		return nil, &services.ServiceError{Message: "failed to fetch task"}
	}
	if m.returnNotFound {
		return nil, nil
	}
	return &models.Task{ID: id, Title: "Test Task", Status: models.StatusToDo}, nil
}

func (m *MockTaskService) CreateTask(input validation.CreateTaskInput, creatorID uuid.UUID) (*models.Task, error) {
	dto, err := validation.ValidateCreate(input)
	if err != nil {
		return nil, err
	}
	if m.shouldReturnError {
		return nil, &services.ServiceError{Message: "failed to create task"}
	}
	task := models.Task{
		ID:           uuid.Must(uuid.NewV4()),
		Title:        dto.Title,
		Priority:     dto.Priority,
		Status:       dto.Status,
		CreatorID:    creatorID,
		AssignedToID: dto.AssignedToID,
	}
	m.tasks = append(m.tasks, task)
	return &task, nil
}

func (m *MockTaskService) UpdateTask(id uuid.UUID, input validation.UpdateTaskInput) (*models.Task, error) {
	if _, err := validation.ValidateUpdate(input); err != nil {
		return nil, err
	}
	if m.returnNotFound {
		return nil, repositories.ErrTaskNotFound
	}
	if m.shouldReturnError {
		return nil, &services.ServiceError{Message: "failed to update task"}
	}
	return &models.Task{ID: id, Title: "Updated Task"}, nil
}

func (m *MockTaskService) DeleteTask(id uuid.UUID) error {
	if m.returnNotFound {
		return repositories.ErrTaskNotFound
	}
	if m.shouldReturnError {
		return &services.ServiceError{Message: "failed to delete task"}
	}
	return nil
}

func (m *MockTaskService) GetDashboardStats(userID uuid.UUID) (*models.DashboardStats, error) {
	if m.shouldReturnError {
		return nil, &services.ServiceError{Message: "failed to fetch dashboard statistics"}
	}
	return &models.DashboardStats{TotalTasks: len(m.tasks)}, nil
}

func setupTaskHandler() (*handlers.TaskHandler, *MockTaskService, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	mockService := &MockTaskService{}
	handler := handlers.NewTaskHandler(mockService, nil)
	router := gin.New()

	// Mock authentication middleware
	router.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.Must(uuid.NewV4()).String())
		c.Next()
	})

	return handler, mockService, router
}

func TestGetTasks(t *testing.T) {
	handler, mock, router := setupTaskHandler()
	router.GET("/tasks", handler.GetTasks)
	mock.tasks = []models.Task{{Title: "one"}, {Title: "two"}}

	req, _ := http.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var tasks []models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("Expected 2 tasks, got %d", len(tasks))
	}
}

func TestGetTasksParsesFilters(t *testing.T) {
	handler, mock, router := setupTaskHandler()
	router.GET("/tasks", handler.GetTasks)

	req, _ := http.NewRequest("GET", "/tasks?status=Completed&priority=High&search=report&overdue=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if mock.lastFilter == nil {
		t.Fatal("Expected filter to reach the service")
	}
	if mock.lastFilter.Status == nil || *mock.lastFilter.Status != models.StatusCompleted {
		t.Errorf("Expected Completed status filter, got %v", mock.lastFilter.Status)
	}
	if mock.lastFilter.Search != "report" {
		t.Errorf("Expected search filter, got %q", mock.lastFilter.Search)
	}
	if !mock.lastFilter.Overdue {
		t.Error("Expected overdue filter to be set")
	}
}

func TestGetTasksInvalidFilterValue(t *testing.T) {
	handler, _, router := setupTaskHandler()
	router.GET("/tasks", handler.GetTasks)

	req, _ := http.NewRequest("GET", "/tasks?status=Pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestGetTasksUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewTaskHandler(&MockTaskService{}, nil)
	router := gin.New()
	router.GET("/tasks", handler.GetTasks)

	req, _ := http.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestCreateTask(t *testing.T) {
	handler, _, router := setupTaskHandler()
	router.POST("/tasks", handler.CreateTask)

	payload := map[string]interface{}{
		"title":    "Test Task",
		"priority": "High",
	}
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if task.Status != models.StatusToDo {
		t.Errorf("Expected default status %q, got %q", models.StatusToDo, task.Status)
	}
}

func TestCreateTaskInvalidJSON(t *testing.T) {
	handler, _, router := setupTaskHandler()
	router.POST("/tasks", handler.CreateTask)

	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateTaskValidationDetails(t *testing.T) {
	handler, _, router := setupTaskHandler()
	router.POST("/tasks", handler.CreateTask)

	payload := map[string]interface{}{
		"title":    "",
		"priority": "Critical",
	}
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var response struct {
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if _, ok := response.Details["title"]; !ok {
		t.Errorf("Expected title detail, got %v", response.Details)
	}
	if _, ok := response.Details["priority"]; !ok {
		t.Errorf("Expected priority detail, got %v", response.Details)
	}
}

func TestCreateTaskSucceedsWhenEnqueueFails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := &MockTaskService{}

	// Nothing listens on this address, so every enqueue fails.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer client.Close()

	handler := handlers.NewTaskHandler(mockService, worker.NewJobQueue(client))
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.Must(uuid.NewV4()).String())
		c.Next()
	})
	router.POST("/tasks", handler.CreateTask)

	payload := map[string]interface{}{
		"title":          "Assigned despite queue outage",
		"priority":       "Medium",
		"assigned_to_id": uuid.Must(uuid.NewV4()).String(),
	}
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	handler, mock, router := setupTaskHandler()
	router.PATCH("/tasks/:id", handler.UpdateTask)
	mock.returnNotFound = true

	body, _ := json.Marshal(map[string]interface{}{"status": "Completed"})
	req, _ := http.NewRequest("PATCH", "/tasks/"+uuid.Must(uuid.NewV4()).String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	handler, _, router := setupTaskHandler()
	router.DELETE("/tasks/:id", handler.DeleteTask)

	req, _ := http.NewRequest("DELETE", "/tasks/"+uuid.Must(uuid.NewV4()).String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestDeleteTaskNotFound(t *testing.T) {
	handler, mock, router := setupTaskHandler()
	router.DELETE("/tasks/:id", handler.DeleteTask)
	mock.returnNotFound = true

	req, _ := http.NewRequest("DELETE", "/tasks/"+uuid.Must(uuid.NewV4()).String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestGetTaskByIDNotFound(t *testing.T) {
	handler, mock, router := setupTaskHandler()
	router.GET("/tasks/:id", handler.GetTaskByID)
	mock.returnNotFound = true

	req, _ := http.NewRequest("GET", "/tasks/"+uuid.Must(uuid.NewV4()).String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestGetTasksServiceError(t *testing.T) {
	handler, mock, router := setupTaskHandler()
	router.GET("/tasks", handler.GetTasks)
	mock.shouldReturnError = true

	req, _ := http.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}
