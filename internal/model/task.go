package model

// Task is a piece of follow-up work for a case worker
type Task struct {
	Record
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ClientID    string `json:"clientId,omitempty"`
	AssigneeID  string `json:"assigneeId,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status,omitempty"`
}

func (t Task) WithMeta(r Record) Task { t.Record = r; return t }

func (t Task) DisplayName() string { return t.Title }

// Task statuses
const (
	TaskOpen = "open"
	TaskDone = "done"
)
