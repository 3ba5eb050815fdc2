package transport

type TemplateRequest struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Category           string `json:"category"`
	Priority           string `json:"priority"`
	AssignedTo         string `json:"assigned_to"`
	RecurrenceKind     string `json:"recurrence_kind"`
	RecurrenceInterval int    `json:"recurrence_interval"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	IsActive           *bool  `json:"is_active"`
}

type TaskRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assigned_to"`
	DueDate     string `json:"due_date"`
	Progress    int    `json:"progress"`
}

// TaskPatchRequest distinguishes "absent" from "set to zero value" so a
// partial edit never clobbers fields the client did not send.
type TaskPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	AssignedTo  *string `json:"assigned_to"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
	Progress    *int    `json:"progress"`
}
