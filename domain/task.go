package domain

import "time"

// TaskStatus enumerates the lifecycle states of a task instance.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status ends the lifecycle for notification
// purposes. The data layer still accepts writes that move a task away from a
// terminal state; such reversals just never notify.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TaskInstance is one concrete, datable unit of work, optionally traced back
// to the recurrence template that materialized it.
type TaskInstance struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Category         string     `json:"category"`
	Priority         Priority   `json:"priority"`
	AssignedTo       string     `json:"assigned_to,omitempty"`
	Status           TaskStatus `json:"status"`
	DueDate          time.Time  `json:"due_date"`
	Progress         int        `json:"progress"`
	CreatedBy        string     `json:"created_by"`
	SourceTemplateID string     `json:"source_template_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (t *TaskInstance) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// Validate checks the fields a caller must supply before persistence.
func (t *TaskInstance) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Title == "" {
		return NewError(ErrCodeInvalid, "title is required")
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return NewError(ErrCodeInvalid, "unknown priority")
	}
	if t.Progress < 0 || t.Progress > 100 {
		return NewError(ErrCodeInvalid, "progress must be between 0 and 100")
	}
	return nil
}
