package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"taskflow/backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type NotificationsTestSuite struct {
	suite.Suite
	db *gorm.DB

	creatorID  uuid.UUID
	assigneeID uuid.UUID
}

func (suite *NotificationsTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	suite.Require().NoError(db.Exec(`CREATE TABLE tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		due_date DATETIME,
		priority TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'To Do',
		creator_id TEXT NOT NULL,
		assigned_to_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)

	suite.Require().NoError(db.Exec(`CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		task_id TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN DEFAULT FALSE,
		created_at DATETIME
	)`).Error)

	suite.db = db
	suite.creatorID = uuid.Must(uuid.NewV4())
	suite.assigneeID = uuid.Must(uuid.NewV4())
}

func (suite *NotificationsTestSuite) insertTask(task models.Task) models.Task {
	if task.ID == uuid.Nil {
		task.ID = uuid.Must(uuid.NewV4())
	}
	if task.CreatorID == uuid.Nil {
		task.CreatorID = suite.creatorID
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusToDo
	}
	suite.Require().NoError(suite.db.Create(&task).Error)
	return task
}

func (suite *NotificationsTestSuite) job(jobType JobType, taskID, userID uuid.UUID) *Job {
	return &Job{
		ID:   "test-job",
		Type: jobType,
		Payload: map[string]interface{}{
			"task_id": taskID.String(),
			"user_id": userID.String(),
		},
		MaxTries: 3,
	}
}

func (suite *NotificationsTestSuite) TestTaskAssignedWritesNotification() {
	task := suite.insertTask(models.Task{
		Title:        "Prepare quarterly report",
		AssignedToID: &suite.assigneeID,
	})

	handler := NewTaskAssignedHandler(suite.db)
	err := handler(context.Background(), suite.job(JobTypeTaskAssigned, task.ID, suite.assigneeID))
	suite.NoError(err)

	var notifications []models.Notification
	suite.NoError(suite.db.Find(&notifications).Error)
	suite.Require().Len(notifications, 1)
	suite.Equal(suite.assigneeID, notifications[0].UserID)
	suite.Equal(task.ID, notifications[0].TaskID)
	suite.Contains(notifications[0].Message, "Prepare quarterly report")
	suite.False(notifications[0].IsRead)
}

func (suite *NotificationsTestSuite) TestTaskAssignedMissingTaskFails() {
	handler := NewTaskAssignedHandler(suite.db)
	err := handler(context.Background(), suite.job(JobTypeTaskAssigned, uuid.Must(uuid.NewV4()), suite.assigneeID))
	suite.Error(err)
}

func (suite *NotificationsTestSuite) TestTaskAssignedBadPayloadFails() {
	handler := NewTaskAssignedHandler(suite.db)
	err := handler(context.Background(), &Job{
		ID:      "bad-job",
		Type:    JobTypeTaskAssigned,
		Payload: map[string]interface{}{"task_id": "not-a-uuid"},
	})
	suite.Error(err)
}

func (suite *NotificationsTestSuite) TestOverdueReminderWritesNotification() {
	due := time.Now().Add(-24 * time.Hour)
	task := suite.insertTask(models.Task{
		Title:   "Ship release notes",
		DueDate: &due,
	})

	handler := NewOverdueReminderHandler(suite.db)
	err := handler(context.Background(), suite.job(JobTypeOverdueReminder, task.ID, suite.creatorID))
	suite.NoError(err)

	var notification models.Notification
	suite.NoError(suite.db.First(&notification).Error)
	suite.Contains(notification.Message, "overdue")
}

func (suite *NotificationsTestSuite) TestOverdueReminderSkipsCompletedTask() {
	due := time.Now().Add(-24 * time.Hour)
	task := suite.insertTask(models.Task{
		Title:   "Already done",
		DueDate: &due,
		Status:  models.StatusCompleted,
	})

	handler := NewOverdueReminderHandler(suite.db)
	err := handler(context.Background(), suite.job(JobTypeOverdueReminder, task.ID, suite.creatorID))
	suite.NoError(err)

	var count int64
	suite.NoError(suite.db.Model(&models.Notification{}).Count(&count).Error)
	suite.Zero(count)
}

func (suite *NotificationsTestSuite) TestScanOverdueEnqueuesPerRecipient() {
	mr, err := miniredis.Run()
	suite.Require().NoError(err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	queue := NewJobQueue(client)

	due := time.Now().Add(-time.Hour)
	suite.insertTask(models.Task{
		Title:        "Overdue with assignee",
		DueDate:      &due,
		AssignedToID: &suite.assigneeID,
	})

	suite.NoError(scanOverdue(context.Background(), suite.db, queue))

	jobs, err := client.LRange(context.Background(), "reminders", 0, -1).Result()
	suite.Require().NoError(err)
	suite.Len(jobs, 2)

	var job Job
	suite.NoError(json.Unmarshal([]byte(jobs[0]), &job))
	suite.Equal(JobTypeOverdueReminder, job.Type)
}

func (suite *NotificationsTestSuite) TestScanOverdueDeduplicates() {
	mr, err := miniredis.Run()
	suite.Require().NoError(err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	queue := NewJobQueue(client)

	due := time.Now().Add(-time.Hour)
	task := suite.insertTask(models.Task{
		Title:   "Already reminded",
		DueDate: &due,
	})

	suite.Require().NoError(createNotification(context.Background(), suite.db,
		suite.creatorID, task.ID, "\"Already reminded\" is overdue"))

	suite.NoError(scanOverdue(context.Background(), suite.db, queue))

	jobs, err := client.LRange(context.Background(), "reminders", 0, -1).Result()
	suite.Require().NoError(err)
	suite.Empty(jobs)
}

func TestNotificationsTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationsTestSuite))
}
