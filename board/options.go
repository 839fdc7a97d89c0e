package board

import (
	"strconv"

	"tutor-dashboard/domain"
)

// FallbackAssignees is offered when no tutors are available.
var FallbackAssignees = []string{"User 1", "User 2", "User 3"}

// FormOptions lists the choices offered by the schedule form.
type FormOptions struct {
	TaskNames []string        `json:"taskNames"`
	Assignees []string        `json:"assignees"`
	Statuses  []domain.Status `json:"statuses"`
}

// Snapshot is a read-only view of the whole board.
type Snapshot struct {
	Columns         []Column          `json:"columns"`
	Schedules       []domain.Schedule `json:"schedules"`
	EditingTask     *TaskRef          `json:"editingTask,omitempty"`
	EditingSchedule *int              `json:"editingSchedule,omitempty"`
}

// Snapshot copies the current board and any pending edit targets.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Columns:   s.columns(),
		Schedules: append([]domain.Schedule{}, s.schedules...),
	}
	if ref, ok := s.pendingTaskEdit(); ok {
		snap.EditingTask = &ref
	}
	if idx, ok := s.pendingScheduleEdit(); ok {
		snap.EditingSchedule = &idx
	}
	return snap
}

// FormOptions builds the schedule form choices: every task text in column
// order, and one assignee per tutor. An empty tutor list falls back to
// FallbackAssignees.
func (s *Store) FormOptions(tutors []domain.Tutor) FormOptions {
	s.mu.Lock()
	var names []string
	for _, c := range s.categories() {
		for _, t := range s.tasks[c] {
			names = append(names, t.Text)
		}
	}
	s.mu.Unlock()

	opts := FormOptions{
		TaskNames: names,
		Statuses:  append([]domain.Status(nil), domain.Statuses...),
	}
	if opts.TaskNames == nil {
		opts.TaskNames = []string{}
	}
	seen := make(map[string]int, len(tutors))
	for _, t := range tutors {
		name := t.DisplayName()
		seen[name]++
		if seen[name] > 1 {
			name += " (" + strconv.Itoa(seen[name]) + ")"
		}
		opts.Assignees = append(opts.Assignees, name)
	}
	if len(opts.Assignees) == 0 {
		opts.Assignees = append([]string(nil), FallbackAssignees...)
	}
	return opts
}
