package domain

import "strings"

// Category labels a column of the task board.
type Category string

const (
	NotYet        Category = "Not Yet"
	Needed        Category = "Needed"
	TotallyNeeded Category = "Totally Needed"
)

// Categories lists the fixed board columns in display order.
var Categories = []Category{NotYet, Needed, TotallyNeeded}

// Fixed reports whether c is one of the built-in board columns.
func (c Category) Fixed() bool {
	for _, fixed := range Categories {
		if c == fixed {
			return true
		}
	}
	return false
}

// ParseCategory resolves a label ("Totally Needed") or identifier
// ("TotallyNeeded") to a fixed category. Matching ignores case and spaces.
func ParseCategory(s string) (Category, bool) {
	want := compact(s)
	if want == "" {
		return "", false
	}
	for _, c := range Categories {
		if compact(string(c)) == want {
			return c, true
		}
	}
	return "", false
}

func compact(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// Task is a single free-text item on the board.
type Task struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Status is the progress of a booked schedule.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists the statuses offered by the schedule form.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Schedule books a task for an assignee at a date and time.
type Schedule struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	TaskName   string `json:"taskName" yaml:"taskName" validate:"required"`
	AssignedTo string `json:"assignedTo" yaml:"assignedTo" validate:"required"`
	Date       string `json:"date" yaml:"date" validate:"required"`
	Time       string `json:"time" yaml:"time" validate:"required"`
	Status     Status `json:"status" yaml:"status"`
}

// SameFields reports whether two schedules carry the same booking, ignoring ids.
func (s Schedule) SameFields(o Schedule) bool {
	return s.TaskName == o.TaskName &&
		s.AssignedTo == o.AssignedTo &&
		s.Date == o.Date &&
		s.Time == o.Time &&
		s.Status == o.Status
}
