package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Notification is written by the background worker when a task is assigned
// or becomes overdue. Delivery to clients is the store change feed's job.
type Notification struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	TaskID    uuid.UUID `json:"task_id" gorm:"type:uuid;not null"`
	Message   string    `json:"message" gorm:"not null"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`

	Task *Task `json:"task,omitempty" gorm:"foreignKey:TaskID"`
}
