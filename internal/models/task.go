package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
	PriorityUrgent TaskPriority = "Urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusReview     TaskStatus = "Review"
	StatusCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReview, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID           uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Title        string       `json:"title" gorm:"not null"`
	Description  *string      `json:"description"`
	DueDate      *time.Time   `json:"due_date"`
	Priority     TaskPriority `json:"priority" gorm:"not null"`
	Status       TaskStatus   `json:"status" gorm:"not null;default:'To Do'"`
	CreatorID    uuid.UUID    `json:"creator_id" gorm:"type:uuid;not null"`
	AssignedToID *uuid.UUID   `json:"assigned_to_id" gorm:"type:uuid"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Joined relations, present only when preloaded.
	Creator    *User `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	AssignedTo *User `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
}

// Overdue reports whether the task is past due at the given instant.
// Completed tasks are never overdue.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

// TaskFilter is a request-scoped predicate set. Nil pointers and false
// flags mean the predicate is not applied; present predicates compose
// with AND.
type TaskFilter struct {
	Status       *TaskStatus   `json:"status"`
	Priority     *TaskPriority `json:"priority"`
	Search       string        `json:"search"`
	AssignedToMe bool          `json:"assigned_to_me"`
	CreatedByMe  bool          `json:"created_by_me"`
	Overdue      bool          `json:"overdue"`
}

// DashboardStats is computed fresh per request, never persisted. The six
// counts are independent: one task can land in several buckets.
type DashboardStats struct {
	TotalTasks      int `json:"totalTasks"`
	CompletedTasks  int `json:"completedTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	OverdueTasks    int `json:"overdueTasks"`
	AssignedToMe    int `json:"assignedToMe"`
	CreatedByMe     int `json:"createdByMe"`
}
