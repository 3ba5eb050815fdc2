package domain

import (
	"fmt"
	"time"
)

// NotificationType classifies notification records. The set is closed: every
// type has a static title/message template and anything else is rejected.
type NotificationType string

const (
	NotifyTaskAssigned     NotificationType = "task_assigned"
	NotifyTaskUpdated      NotificationType = "task_updated"
	NotifyTaskCompleted    NotificationType = "task_completed"
	NotifyDeadlineReminder NotificationType = "deadline_reminder"
	NotifyGeneral          NotificationType = "general"
)

// Notification is a best-effort alert persisted for a single recipient.
// RelatedTaskID is a lookup-only reference: the task may be gone by the time
// the notification is read, and readers must tolerate that.
type Notification struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	Type          NotificationType `json:"type"`
	Recipient     string           `json:"recipient"`
	IsRead        bool             `json:"is_read"`
	RelatedTaskID string           `json:"related_task_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

type notificationTemplate struct {
	title   string
	message string
}

var notificationTemplates = map[NotificationType]notificationTemplate{
	NotifyTaskAssigned:     {"New task assigned", "You have been assigned a new task: %s"},
	NotifyTaskUpdated:      {"Task updated", "A task assigned to you was updated: %s"},
	NotifyTaskCompleted:    {"Task completed", "A task you created was completed: %s"},
	NotifyDeadlineReminder: {"Task due soon", "A task is approaching its due date: %s"},
	NotifyGeneral:          {"Notification", "%s"},
}

// BuildNotification renders the static template for typ into a Notification
// addressed to recipient. subject is interpolated into the message (for task
// notifications it is the task title).
func BuildNotification(typ NotificationType, recipient, relatedTaskID, subject string) (*Notification, error) {
	tmpl, ok := notificationTemplates[typ]
	if !ok {
		return nil, NewError(ErrCodeInvalid, fmt.Sprintf("unknown notification type %q", typ))
	}
	if recipient == "" {
		return nil, NewError(ErrCodeInvalid, "notification recipient is required")
	}
	return &Notification{
		Title:         tmpl.title,
		Message:       fmt.Sprintf(tmpl.message, subject),
		Type:          typ,
		Recipient:     recipient,
		RelatedTaskID: relatedTaskID,
	}, nil
}
