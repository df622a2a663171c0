package worker

import (
	"context"
	"fmt"
	"time"

	"taskflow/backend/internal/logging"
	"taskflow/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// NewTaskAssignedHandler returns the handler for assignment jobs: it
// writes a Notification row for the assignee. Client delivery is the
// store change feed's concern, not ours.
func NewTaskAssignedHandler(db *gorm.DB) JobHandler {
	return func(ctx context.Context, job *Job) error {
		taskID, userID, err := notificationIDs(job)
		if err != nil {
			return err
		}

		var task models.Task
		if err := db.WithContext(ctx).Where("id = ?", taskID).First(&task).Error; err != nil {
			return fmt.Errorf("failed to load task %s: %w", taskID, err)
		}

		return createNotification(ctx, db, userID, taskID,
			fmt.Sprintf("You have been assigned to %q", task.Title))
	}
}

// NewOverdueReminderHandler writes an overdue reminder Notification,
// skipping tasks that were completed after the job was enqueued.
func NewOverdueReminderHandler(db *gorm.DB) JobHandler {
	return func(ctx context.Context, job *Job) error {
		taskID, userID, err := notificationIDs(job)
		if err != nil {
			return err
		}

		var task models.Task
		if err := db.WithContext(ctx).Where("id = ?", taskID).First(&task).Error; err != nil {
			return fmt.Errorf("failed to load task %s: %w", taskID, err)
		}
		if !task.Overdue(time.Now()) {
			return nil
		}

		return createNotification(ctx, db, userID, taskID,
			fmt.Sprintf("%q is overdue", task.Title))
	}
}

// StartOverdueScanner periodically enqueues one reminder per overdue task
// per creator/assignee, deduplicated against already-written reminders.
// It stops when ctx is cancelled.
func StartOverdueScanner(ctx context.Context, db *gorm.DB, queue *JobQueue, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := scanOverdue(ctx, db, queue); err != nil {
					logging.Logger.WithError(err).Error("overdue scan failed")
				}
			}
		}
	}()
}

func scanOverdue(ctx context.Context, db *gorm.DB, queue *JobQueue) error {
	var tasks []models.Task
	err := db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date < ? AND status <> ?",
			time.Now(), models.StatusCompleted).
		Find(&tasks).Error
	if err != nil {
		return fmt.Errorf("failed to query overdue tasks: %w", err)
	}

	for i := range tasks {
		task := &tasks[i]

		recipients := []uuid.UUID{task.CreatorID}
		if task.AssignedToID != nil && *task.AssignedToID != task.CreatorID {
			recipients = append(recipients, *task.AssignedToID)
		}

		for _, userID := range recipients {
			var count int64
			err := db.WithContext(ctx).Model(&models.Notification{}).
				Where("task_id = ? AND user_id = ? AND message LIKE ?",
					task.ID, userID, "%overdue%").
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			err = queue.Enqueue("reminders", JobTypeOverdueReminder, map[string]interface{}{
				"task_id": task.ID.String(),
				"user_id": userID.String(),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func notificationIDs(job *Job) (taskID, userID uuid.UUID, err error) {
	taskStr, _ := job.Payload["task_id"].(string)
	userStr, _ := job.Payload["user_id"].(string)

	taskID, err = uuid.FromString(taskStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("job %s: invalid task_id: %w", job.ID, err)
	}
	userID, err = uuid.FromString(userStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("job %s: invalid user_id: %w", job.ID, err)
	}
	return taskID, userID, nil
}

func createNotification(ctx context.Context, db *gorm.DB, userID, taskID uuid.UUID, message string) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}

	notification := models.Notification{
		ID:      id,
		UserID:  userID,
		TaskID:  taskID,
		Message: message,
	}
	if err := db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}
