package domain

import "time"

// RecurrenceKind is the unit a recurrence template steps in.
type RecurrenceKind string

const (
	RecurDaily   RecurrenceKind = "daily"
	RecurWeekly  RecurrenceKind = "weekly"
	RecurMonthly RecurrenceKind = "monthly"
	RecurYearly  RecurrenceKind = "yearly"
)

func (k RecurrenceKind) Valid() bool {
	switch k {
	case RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
		return true
	}
	return false
}

// Priority ranks tasks and templates.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RecurrenceTemplate is a reusable definition of a repeating task: what to
// create, how often, and over which window.
type RecurrenceTemplate struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category"`
	Priority    Priority       `json:"priority"`
	AssignedTo  string         `json:"assigned_to,omitempty"`
	Kind        RecurrenceKind `json:"recurrence_kind"`
	Interval    int            `json:"recurrence_interval"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	IsActive    bool           `json:"is_active"`
	// LastGeneratedDate is advisory bookkeeping. It advances only after a
	// bulk-create of the corresponding batch fully succeeds.
	LastGeneratedDate *time.Time `json:"last_generated_date,omitempty"`
	CreatedBy         string     `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ExpansionEnd returns the inclusive end of the expansion window. A template
// without an explicit end date is bounded to one year after its start.
func (t *RecurrenceTemplate) ExpansionEnd() time.Time {
	if t.EndDate != nil {
		return *t.EndDate
	}
	return t.StartDate.AddDate(1, 0, 0)
}

// Validate enforces the caller contract before anything is persisted or
// expanded. It returns an INVALID domain error with the first violation.
func (t *RecurrenceTemplate) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Title == "" {
		return NewError(ErrCodeInvalid, "title is required")
	}
	if t.StartDate.IsZero() {
		return NewError(ErrCodeInvalid, "start date is required")
	}
	if !t.Kind.Valid() {
		return NewError(ErrCodeInvalid, "unknown recurrence kind")
	}
	if t.Interval < 1 {
		return NewError(ErrCodeInvalid, "recurrence interval must be at least 1")
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return NewError(ErrCodeInvalid, "unknown priority")
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return NewError(ErrCodeInvalid, "end date precedes start date")
	}
	return nil
}
