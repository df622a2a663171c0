package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskflow/backend/internal/models"
	"taskflow/backend/internal/validation"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskRepository is the only component that talks to task storage. It
// translates filters into queries and owns no business rules.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindAll returns tasks matching every present filter predicate, newest
// first. The created_at DESC ordering is a contract callers rely on. An
// empty result is an empty slice, not an error.
func (r *TaskRepository) FindAll(filter *models.TaskFilter, currentUserID uuid.UUID) ([]models.Task, error) {
	query := r.db.Model(&models.Task{}).
		Preload("Creator").
		Preload("AssignedTo").
		Order("created_at DESC")

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.Priority != nil {
			query = query.Where("priority = ?", *filter.Priority)
		}
		if filter.Search != "" {
			pattern := "%" + strings.ToLower(filter.Search) + "%"
			query = query.Where(
				"LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?",
				pattern, pattern,
			)
		}
		if filter.AssignedToMe {
			query = query.Where("assigned_to_id = ?", currentUserID)
		}
		if filter.CreatedByMe {
			query = query.Where("creator_id = ?", currentUserID)
		}
		if filter.Overdue {
			query = query.Where(
				"due_date IS NOT NULL AND due_date < ? AND status <> ?",
				time.Now(), models.StatusCompleted,
			)
		}
	}

	tasks := []models.Task{}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return tasks, nil
}

// FindForUser returns every task where the user is creator or assignee,
// the input set for dashboard aggregation.
func (r *TaskRepository) FindForUser(userID uuid.UUID) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.Model(&models.Task{}).
		Where("creator_id = ? OR assigned_to_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query user tasks: %w", err)
	}
	return tasks, nil
}

// FindByID returns nil, not an error, when the task does not exist.
func (r *TaskRepository) FindByID(id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.Preload("Creator").Preload("AssignedTo").
		Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return &task, nil
}

// Create persists the task with the supplied creator identity and returns
// the stored row.
func (r *TaskRepository) Create(dto *validation.CreateTaskDTO, creatorID uuid.UUID) (*models.Task, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	task := models.Task{
		ID:           id,
		Title:        dto.Title,
		Description:  dto.Description,
		DueDate:      dto.DueDate,
		Priority:     dto.Priority,
		Status:       dto.Status,
		CreatorID:    creatorID,
		AssignedToID: dto.AssignedToID,
	}

	if err := r.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return r.fetch(task.ID)
}

// Update applies a partial merge. Fields the DTO marks as explicitly null
// are cleared; omitted fields never reach the updates map. A missing id is
// ErrTaskNotFound.
func (r *TaskRepository) Update(id uuid.UUID, dto *validation.UpdateTaskDTO) (*models.Task, error) {
	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Description.Set {
		updates["description"] = dto.Description.Value
	}
	if dto.DueDate.Set {
		updates["due_date"] = dto.DueDate.Value
	}
	if dto.Priority != nil {
		updates["priority"] = *dto.Priority
	}
	if dto.Status != nil {
		updates["status"] = *dto.Status
	}
	if dto.AssignedToID.Set {
		updates["assigned_to_id"] = dto.AssignedToID.Value
	}

	// An empty update is a valid no-op write.
	if len(updates) == 0 {
		task, err := r.fetch(id)
		if err != nil {
			return nil, err
		}
		return task, nil
	}

	result := r.db.Model(&models.Task{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return r.fetch(id)
}

// Delete removes the task by id. Deleting an id that does not exist, or
// that was already deleted, is ErrTaskNotFound rather than a silent no-op.
func (r *TaskRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) fetch(id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.Preload("Creator").Preload("AssignedTo").
		Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return &task, nil
}
