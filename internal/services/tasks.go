package services

import (
	"errors"
	"time"

	"taskflow/backend/internal/logging"
	"taskflow/backend/internal/models"
	"taskflow/backend/internal/repositories"
	"taskflow/backend/internal/validation"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
)

type TaskService interface {
	GetAllTasks(filter *models.TaskFilter, currentUserID uuid.UUID) ([]models.Task, error)
	GetTaskByID(id uuid.UUID) (*models.Task, error)
	CreateTask(input validation.CreateTaskInput, creatorID uuid.UUID) (*models.Task, error)
	UpdateTask(id uuid.UUID, input validation.UpdateTaskInput) (*models.Task, error)
	DeleteTask(id uuid.UUID) error
	GetDashboardStats(userID uuid.UUID) (*models.DashboardStats, error)
}

type TaskServiceImpl struct {
	repo *repositories.TaskRepository
}

func NewTaskService(repo *repositories.TaskRepository) *TaskServiceImpl {
	return &TaskServiceImpl{repo: repo}
}

func (s *TaskServiceImpl) GetAllTasks(filter *models.TaskFilter, currentUserID uuid.UUID) ([]models.Task, error) {
	tasks, err := s.repo.FindAll(filter, currentUserID)
	if err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"operation": "GetAllTasks",
			"user_id":   currentUserID.String(),
		}).WithError(err).Error("failed to fetch tasks")
		return nil, newServiceError("failed to fetch tasks", err)
	}
	return tasks, nil
}

func (s *TaskServiceImpl) GetTaskByID(id uuid.UUID) (*models.Task, error) {
	task, err := s.repo.FindByID(id)
	if err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"operation": "GetTaskByID",
			"task_id":   id.String(),
		}).WithError(err).Error("failed to fetch task")
		return nil, newServiceError("failed to fetch task", err)
	}
	return task, nil
}

// CreateTask validates the payload and persists it under the creator's
// identity. Creation is not idempotent: a caller that retries after an
// ambiguous failure creates a duplicate. Nothing here retries it.
func (s *TaskServiceImpl) CreateTask(input validation.CreateTaskInput, creatorID uuid.UUID) (*models.Task, error) {
	dto, err := validation.ValidateCreate(input)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.Create(dto, creatorID)
	if err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"operation":  "CreateTask",
			"creator_id": creatorID.String(),
		}).WithError(err).Error("failed to create task")
		return nil, newServiceError("failed to create task", err)
	}
	return task, nil
}

// UpdateTask confirms the task exists before touching the write path, so a
// missing id surfaces as ErrTaskNotFound instead of a generic store error
// and a partial payload can never turn into an upsert. The check-then-write
// race is accepted; the store is the authority.
func (s *TaskServiceImpl) UpdateTask(id uuid.UUID, input validation.UpdateTaskInput) (*models.Task, error) {
	dto, err := validation.ValidateUpdate(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(id)
	if err != nil {
		return nil, newServiceError("failed to fetch task", err)
	}
	if existing == nil {
		return nil, repositories.ErrTaskNotFound
	}

	task, err := s.repo.Update(id, dto)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, err
		}
		logging.Logger.WithFields(logrus.Fields{
			"operation": "UpdateTask",
			"task_id":   id.String(),
		}).WithError(err).Error("failed to update task")
		return nil, newServiceError("failed to update task", err)
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(id uuid.UUID) error {
	existing, err := s.repo.FindByID(id)
	if err != nil {
		return newServiceError("failed to fetch task", err)
	}
	if existing == nil {
		return repositories.ErrTaskNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return err
		}
		logging.Logger.WithFields(logrus.Fields{
			"operation": "DeleteTask",
			"task_id":   id.String(),
		}).WithError(err).Error("failed to delete task")
		return newServiceError("failed to delete task", err)
	}
	return nil
}

// GetDashboardStats aggregates over the tasks where the user is creator or
// assignee, evaluated against the current wall clock.
func (s *TaskServiceImpl) GetDashboardStats(userID uuid.UUID) (*models.DashboardStats, error) {
	tasks, err := s.repo.FindForUser(userID)
	if err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"operation": "GetDashboardStats",
			"user_id":   userID.String(),
		}).WithError(err).Error("failed to fetch dashboard statistics")
		return nil, newServiceError("failed to fetch dashboard statistics", err)
	}

	stats := ComputeStats(tasks, userID, time.Now())
	return &stats, nil
}
