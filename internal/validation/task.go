package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"taskflow/backend/internal/models"

	"github.com/gofrs/uuid"
)

const titleMaxLen = 100

// CreateTaskInput is the raw creation payload as bound from JSON.
type CreateTaskInput struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	DueDate      *string `json:"due_date"`
	Priority     string  `json:"priority"`
	Status       *string `json:"status"`
	AssignedToID *string `json:"assigned_to_id"`
}

// CreateTaskDTO is a validated creation payload.
type CreateTaskDTO struct {
	Title        string
	Description  *string
	DueDate      *time.Time
	Priority     models.TaskPriority
	Status       models.TaskStatus
	AssignedToID *uuid.UUID
}

// UpdateTaskInput is the raw partial-update payload. Every field is
// tri-state: omitted, explicit null, or a value.
type UpdateTaskInput struct {
	Title        OptionalString `json:"title"`
	Description  OptionalString `json:"description"`
	DueDate      OptionalString `json:"due_date"`
	Priority     OptionalString `json:"priority"`
	Status       OptionalString `json:"status"`
	AssignedToID OptionalString `json:"assigned_to_id"`
}

// UpdateTaskDTO is a validated partial update. Nil pointers mean the field
// was omitted; the Nullable fields additionally carry explicit nulls for
// the columns that may be cleared.
type UpdateTaskDTO struct {
	Title        *string
	Description  NullableString
	DueDate      NullableTime
	Priority     *models.TaskPriority
	Status       *models.TaskStatus
	AssignedToID NullableUUID
}

// IsEmpty reports whether the update touches no fields. An empty update is
// valid and results in a no-op write.
func (d *UpdateTaskDTO) IsEmpty() bool {
	return d.Title == nil && !d.Description.Set && !d.DueDate.Set &&
		d.Priority == nil && d.Status == nil && !d.AssignedToID.Set
}

// FilterInput is the raw filter payload, typically parsed from query
// parameters.
type FilterInput struct {
	Status       string `json:"status" form:"status"`
	Priority     string `json:"priority" form:"priority"`
	Search       string `json:"search" form:"search"`
	AssignedToMe bool   `json:"assigned_to_me" form:"assigned_to_me"`
	CreatedByMe  bool   `json:"created_by_me" form:"created_by_me"`
	Overdue      bool   `json:"overdue" form:"overdue"`
}

// ValidateCreate checks a creation payload and returns the validated DTO.
// The title is trimmed before the length check and stored trimmed; status
// defaults to "To Do" when omitted. All violated fields are reported in a
// single *ValidationError.
func ValidateCreate(input CreateTaskInput) (*CreateTaskDTO, error) {
	verr := newValidationError()

	title := strings.TrimSpace(input.Title)
	if title == "" {
		verr.add("title", "title is required")
	} else if utf8.RuneCountInString(title) > titleMaxLen {
		verr.add("title", "title must be 100 characters or less")
	}

	priority := models.TaskPriority(input.Priority)
	if !priority.Valid() {
		verr.add("priority", "priority must be one of Low, Medium, High, Urgent")
	}

	status := models.StatusToDo
	if input.Status != nil {
		status = models.TaskStatus(*input.Status)
		if !status.Valid() {
			verr.add("status", "status must be one of To Do, In Progress, Review, Completed")
		}
	}

	var dueDate *time.Time
	if input.DueDate != nil {
		parsed, err := time.Parse(time.RFC3339, *input.DueDate)
		if err != nil {
			verr.add("due_date", "due_date must be an RFC 3339 timestamp")
		} else {
			dueDate = &parsed
		}
	}

	var assignedTo *uuid.UUID
	if input.AssignedToID != nil {
		id, err := uuid.FromString(*input.AssignedToID)
		if err != nil {
			verr.add("assigned_to_id", "assigned_to_id must be a valid UUID")
		} else {
			assignedTo = &id
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}

	return &CreateTaskDTO{
		Title:        title,
		Description:  input.Description,
		DueDate:      dueDate,
		Priority:     priority,
		Status:       status,
		AssignedToID: assignedTo,
	}, nil
}

// ValidateUpdate checks a partial-update payload. Field rules match
// ValidateCreate but nothing is required and nothing defaults; explicit
// nulls on description, due_date and assigned_to_id clear the field, while
// title, priority and status may not be set to null.
func ValidateUpdate(input UpdateTaskInput) (*UpdateTaskDTO, error) {
	verr := newValidationError()
	dto := &UpdateTaskDTO{}

	if input.Title.Set {
		if input.Title.Value == nil {
			verr.add("title", "title cannot be null")
		} else {
			title := strings.TrimSpace(*input.Title.Value)
			if title == "" {
				verr.add("title", "title is required")
			} else if utf8.RuneCountInString(title) > titleMaxLen {
				verr.add("title", "title must be 100 characters or less")
			} else {
				dto.Title = &title
			}
		}
	}

	if input.Description.Set {
		dto.Description = NullableString{Set: true, Value: input.Description.Value}
	}

	if input.DueDate.Set {
		dto.DueDate.Set = true
		if input.DueDate.Value != nil {
			parsed, err := time.Parse(time.RFC3339, *input.DueDate.Value)
			if err != nil {
				verr.add("due_date", "due_date must be an RFC 3339 timestamp")
			} else {
				dto.DueDate.Value = &parsed
			}
		}
	}

	if input.Priority.Set {
		if input.Priority.Value == nil {
			verr.add("priority", "priority cannot be null")
		} else {
			priority := models.TaskPriority(*input.Priority.Value)
			if !priority.Valid() {
				verr.add("priority", "priority must be one of Low, Medium, High, Urgent")
			} else {
				dto.Priority = &priority
			}
		}
	}

	if input.Status.Set {
		if input.Status.Value == nil {
			verr.add("status", "status cannot be null")
		} else {
			status := models.TaskStatus(*input.Status.Value)
			if !status.Valid() {
				verr.add("status", "status must be one of To Do, In Progress, Review, Completed")
			} else {
				dto.Status = &status
			}
		}
	}

	if input.AssignedToID.Set {
		dto.AssignedToID.Set = true
		if input.AssignedToID.Value != nil {
			id, err := uuid.FromString(*input.AssignedToID.Value)
			if err != nil {
				verr.add("assigned_to_id", "assigned_to_id must be a valid UUID")
			} else {
				dto.AssignedToID.Value = &id
			}
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return dto, nil
}

// ValidateFilter checks filter values, rejecting enum values outside the
// closed sets rather than coercing them.
func ValidateFilter(input FilterInput) (*models.TaskFilter, error) {
	verr := newValidationError()
	filter := &models.TaskFilter{
		Search:       input.Search,
		AssignedToMe: input.AssignedToMe,
		CreatedByMe:  input.CreatedByMe,
		Overdue:      input.Overdue,
	}

	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !status.Valid() {
			verr.add("status", "status must be one of To Do, In Progress, Review, Completed")
		} else {
			filter.Status = &status
		}
	}

	if input.Priority != "" {
		priority := models.TaskPriority(input.Priority)
		if !priority.Valid() {
			verr.add("priority", "priority must be one of Low, Medium, High, Urgent")
		} else {
			filter.Priority = &priority
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return filter, nil
}
