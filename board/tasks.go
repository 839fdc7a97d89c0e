package board

import (
	"context"
	"fmt"
	"strings"

	"tutor-dashboard/csvcodec"
	"tutor-dashboard/domain"
)

// Column is one category of the board with its tasks in order.
type Column struct {
	Category domain.Category `json:"category"`
	Tasks    []domain.Task   `json:"tasks"`
}

// TaskRef points at a task by id and by its current position.
type TaskRef struct {
	Category domain.Category `json:"category"`
	ID       string          `json:"id"`
	Index    int             `json:"index"`
}

// AddOrUpdateTask stores text in category. When a pending edit targets a task
// that still exists, that task is replaced in place in its own category;
// otherwise the text is appended to category. Blank text is ignored and reported with
// applied=false. A failed flush still keeps the change in memory.
func (s *Store) AddOrUpdateTask(ctx context.Context, category domain.Category, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.tasks[category]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	replaced := false
	if edit := s.taskEdit; edit != nil {
		target := s.tasks[edit.category]
		if idx := indexOfTask(target, edit.id); idx >= 0 {
			target[idx].Text = text
			replaced = true
		}
	}
	if !replaced {
		s.tasks[category] = append(list, domain.Task{ID: s.newID(), Text: text})
	}
	s.taskEdit = nil

	return true, s.flushTasks(ctx)
}

// DeleteTask removes the task at index; later tasks shift down by one.
func (s *Store) DeleteTask(ctx context.Context, category domain.Category, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteTask(ctx, category, index)
}

// DeleteTaskByID removes the task with the given id wherever it currently is.
func (s *Store) DeleteTaskByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.locateTask(id)
	if !ok {
		return fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	return s.deleteTask(ctx, ref.Category, ref.Index)
}

func (s *Store) deleteTask(ctx context.Context, category domain.Category, index int) error {
	list, err := s.taskList(category, index)
	if err != nil {
		return err
	}
	removed := list[index]
	s.tasks[category] = append(list[:index:index], list[index+1:]...)
	if s.taskEdit != nil && s.taskEdit.id == removed.ID {
		s.taskEdit = nil
	}
	return s.flushTasks(ctx)
}

// BeginEditTask marks the task at index as the pending edit target and returns
// its text. An earlier pending edit is dropped without being committed.
func (s *Store) BeginEditTask(category domain.Category, index int) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.taskList(category, index)
	if err != nil {
		return domain.Task{}, err
	}
	task := list[index]
	s.taskEdit = &taskEdit{category: category, id: task.ID}
	return task, nil
}

// BeginEditTaskByID is BeginEditTask addressed by id.
func (s *Store) BeginEditTaskByID(id string) (TaskRef, domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.locateTask(id)
	if !ok {
		return TaskRef{}, domain.Task{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	s.taskEdit = &taskEdit{category: ref.Category, id: id}
	return ref, s.tasks[ref.Category][ref.Index], nil
}

// CancelTaskEdit drops the pending task edit, if any.
func (s *Store) CancelTaskEdit() {
	s.mu.Lock()
	s.taskEdit = nil
	s.mu.Unlock()
}

// PendingTaskEdit reports the current edit target. ok is false when nothing is
// being edited or the target no longer exists.
func (s *Store) PendingTaskEdit() (TaskRef, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingTaskEdit()
}

func (s *Store) pendingTaskEdit() (TaskRef, bool) {
	if s.taskEdit == nil {
		return TaskRef{}, false
	}
	idx := indexOfTask(s.tasks[s.taskEdit.category], s.taskEdit.id)
	if idx < 0 {
		return TaskRef{}, false
	}
	return TaskRef{Category: s.taskEdit.category, ID: s.taskEdit.id, Index: idx}, true
}

// LocateTask resolves a task id to its category and current position.
func (s *Store) LocateTask(id string) (TaskRef, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locateTask(id)
}

func (s *Store) locateTask(id string) (TaskRef, bool) {
	for _, c := range s.categories() {
		if idx := indexOfTask(s.tasks[c], id); idx >= 0 {
			return TaskRef{Category: c, ID: id, Index: idx}, true
		}
	}
	return TaskRef{}, false
}

// Tasks returns a copy of one category's tasks.
func (s *Store) Tasks(category domain.Category) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.tasks[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return append([]domain.Task(nil), list...), nil
}

// Columns returns every category in display order: the fixed ones first,
// then retained unknown ones by name.
func (s *Store) Columns() []Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.columns()
}

func (s *Store) columns() []Column {
	cats := s.categories()
	out := make([]Column, 0, len(cats))
	for _, c := range cats {
		out = append(out, Column{Category: c, Tasks: append([]domain.Task{}, s.tasks[c]...)})
	}
	return out
}

// ExportTasksCSV renders every task, in column order, as CSV.
func (s *Store) ExportTasksCSV() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []csvcodec.TaskRow
	for _, c := range s.categories() {
		for _, t := range s.tasks[c] {
			rows = append(rows, csvcodec.TaskRow{Category: c, Text: t.Text})
		}
	}
	return csvcodec.EncodeTasks(rows)
}

func (s *Store) taskList(category domain.Category, index int) ([]domain.Task, error) {
	list, ok := s.tasks[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, category, index)
	}
	return list, nil
}

func indexOfTask(list []domain.Task, id string) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}
