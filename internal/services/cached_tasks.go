package services

import (
	"fmt"
	"time"

	"taskflow/backend/internal/cache"
	"taskflow/backend/internal/models"
	"taskflow/backend/internal/validation"

	"github.com/gofrs/uuid"
)

// Staleness bounds for cached reads. A read can lag a concurrent write by
// at most its TTL when the write's invalidation races the cache fill.
const (
	taskCacheTTL  = 5 * time.Minute
	statsCacheTTL = 30 * time.Second
)

// CachedTaskService layers redis caching over a TaskService. Point reads
// and dashboard stats are cached; filtered listings are not, since their
// key space is the full filter cross-product. Cache failures degrade to
// the underlying service, never to the caller.
type CachedTaskService struct {
	inner TaskService
	cache *cache.RedisCache
}

func NewCachedTaskService(inner TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: cacheInstance}
}

func (s *CachedTaskService) GetAllTasks(filter *models.TaskFilter, currentUserID uuid.UUID) ([]models.Task, error) {
	return s.inner.GetAllTasks(filter, currentUserID)
}

func (s *CachedTaskService) GetTaskByID(id uuid.UUID) (*models.Task, error) {
	cacheKey := taskKey(id)

	var cached models.Task
	if err := s.cache.Get(cacheKey, &cached); err == nil {
		return &cached, nil
	}

	task, err := s.inner.GetTaskByID(id)
	if err != nil || task == nil {
		return task, err
	}

	s.cache.Set(cacheKey, task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) CreateTask(input validation.CreateTaskInput, creatorID uuid.UUID) (*models.Task, error) {
	task, err := s.inner.CreateTask(input, creatorID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(taskKey(task.ID), task, taskCacheTTL)
	s.cache.DeletePattern("stats:*")
	return task, nil
}

func (s *CachedTaskService) UpdateTask(id uuid.UUID, input validation.UpdateTaskInput) (*models.Task, error) {
	task, err := s.inner.UpdateTask(id, input)
	if err != nil {
		return nil, err
	}

	s.cache.Set(taskKey(id), task, taskCacheTTL)
	s.cache.DeletePattern("stats:*")
	return task, nil
}

func (s *CachedTaskService) DeleteTask(id uuid.UUID) error {
	if err := s.inner.DeleteTask(id); err != nil {
		return err
	}

	s.cache.Delete(taskKey(id))
	s.cache.DeletePattern("stats:*")
	return nil
}

func (s *CachedTaskService) GetDashboardStats(userID uuid.UUID) (*models.DashboardStats, error) {
	cacheKey := statsKey(userID)

	var cached models.DashboardStats
	if err := s.cache.Get(cacheKey, &cached); err == nil {
		return &cached, nil
	}

	stats, err := s.inner.GetDashboardStats(userID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, stats, statsCacheTTL)
	return stats, nil
}

func taskKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id.String())
}

func statsKey(userID uuid.UUID) string {
	return fmt.Sprintf("stats:%s", userID.String())
}
