// Package tui is a terminal front end for the task board and schedule book.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tutor-dashboard/board"
	"tutor-dashboard/domain"
)

// Board is the part of the board store the terminal UI drives.
type Board interface {
	Snapshot() board.Snapshot
	FormOptions(tutors []domain.Tutor) board.FormOptions

	AddOrUpdateTask(ctx context.Context, category domain.Category, text string) (bool, error)
	BeginEditTask(category domain.Category, index int) (domain.Task, error)
	DeleteTask(ctx context.Context, category domain.Category, index int) error
	CancelTaskEdit()

	AddOrUpdateSchedule(ctx context.Context, s domain.Schedule) (bool, error)
	BeginEditSchedule(index int) (domain.Schedule, error)
	DeleteSchedule(ctx context.Context, index int) error
	CancelScheduleEdit()
}

type mode int

const (
	modeBrowse mode = iota
	modeTaskInput
	modeScheduleForm
)

const (
	fieldTask = iota
	fieldAssignee
	fieldDate
	fieldTime
	fieldStatus
	fieldCount
)

var fieldLabels = [fieldCount]string{"Task", "Assigned to", "Date", "Time", "Status"}

var fieldKeys = [fieldStatus]string{"taskName", "assignedTo", "date", "time"}

const defaultTimeout = 10 * time.Second

// boardChangedMsg reports the outcome of a store mutation.
type boardChangedMsg struct {
	applied bool
	note    string
	err     error
}

// Model is the bubbletea model for the board screen.
type Model struct {
	board   Board
	tutors  []domain.Tutor
	timeout time.Duration
	styles  *Styles

	snap   board.Snapshot
	focus  int
	cursor int
	mode   mode

	input     textinput.Model
	fields    [fieldStatus]textinput.Model
	formFocus int
	status    int
	warnings  map[string]string

	message string
	err     error
	width   int
	height  int
}

// New creates the model. tutors feed the assignee suggestions; an empty list
// falls back to the placeholder assignees.
func New(b Board, tutors []domain.Tutor) Model {
	m := Model{
		board:   b,
		tutors:  tutors,
		timeout: defaultTimeout,
		styles:  NewStyles(),
		snap:    b.Snapshot(),
		input:   textinput.New(),
	}
	m.input.Placeholder = "Task text..."
	m.input.CharLimit = 500
	m.input.Cursor.SetMode(cursor.CursorStatic)
	for i := range m.fields {
		ti := textinput.New()
		ti.Placeholder = fieldLabels[i]
		ti.CharLimit = 200
		ti.Cursor.SetMode(cursor.CursorStatic)
		m.fields[i] = ti
	}
	m.fields[fieldTask].ShowSuggestions = true
	m.fields[fieldAssignee].ShowSuggestions = true
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case boardChangedMsg:
		return m.handleChanged(msg), nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeTaskInput:
			return m.handleTaskInput(msg)
		case modeScheduleForm:
			return m.handleScheduleForm(msg)
		default:
			return m.handleBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) handleChanged(msg boardChangedMsg) Model {
	m.snap = m.board.Snapshot()
	m.err = msg.err
	switch {
	case msg.err != nil:
		m.mode = modeBrowse
		m.message = ""
	case !msg.applied:
		m.message = "nothing saved"
	default:
		m.mode = modeBrowse
		m.message = msg.note
		m.warnings = nil
	}
	m.cursor = m.clampCursor(m.cursor)
	return m
}

func (m Model) handleBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		if m.focus > 0 {
			m.focus--
			m.cursor = m.clampCursor(m.cursor)
		}
	case "right", "l":
		if m.focus < len(m.snap.Columns) {
			m.focus++
			m.cursor = m.clampCursor(m.cursor)
		}
	case "up", "k":
		m.cursor = m.clampCursor(m.cursor - 1)
	case "down", "j":
		m.cursor = m.clampCursor(m.cursor + 1)
	case "a", "n":
		if m.onSchedules() {
			m.board.CancelScheduleEdit()
			return m.openScheduleForm(domain.Schedule{})
		}
		m.board.CancelTaskEdit()
		return m.openTaskInput("")
	case "e", "enter":
		return m.beginEdit()
	case "d", "x":
		return m, m.deleteSelected()
	case "esc":
		m.board.CancelTaskEdit()
		m.board.CancelScheduleEdit()
		m.snap = m.board.Snapshot()
	}
	return m, nil
}

func (m Model) beginEdit() (tea.Model, tea.Cmd) {
	if m.itemCount() == 0 {
		return m, nil
	}
	if m.onSchedules() {
		s, err := m.board.BeginEditSchedule(m.cursor)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.snap = m.board.Snapshot()
		return m.openScheduleForm(s)
	}
	t, err := m.board.BeginEditTask(m.category(), m.cursor)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.snap = m.board.Snapshot()
	return m.openTaskInput(t.Text)
}

func (m Model) deleteSelected() tea.Cmd {
	if m.itemCount() == 0 {
		return nil
	}
	idx := m.cursor
	if m.onSchedules() {
		return m.mutate("schedule deleted", func(ctx context.Context) (bool, error) {
			return true, m.board.DeleteSchedule(ctx, idx)
		})
	}
	category := m.category()
	return m.mutate("task deleted", func(ctx context.Context) (bool, error) {
		return true, m.board.DeleteTask(ctx, category, idx)
	})
}

func (m Model) openTaskInput(text string) (tea.Model, tea.Cmd) {
	m.mode = modeTaskInput
	m.err = nil
	m.input.SetValue(text)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) handleTaskInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.board.CancelTaskEdit()
		m.snap = m.board.Snapshot()
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			m.message = "task text is required"
			return m, nil
		}
		category := m.category()
		m.input.Blur()
		return m, m.mutate("task saved", func(ctx context.Context) (bool, error) {
			return m.board.AddOrUpdateTask(ctx, category, text)
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) openScheduleForm(s domain.Schedule) (tea.Model, tea.Cmd) {
	opts := m.board.FormOptions(m.tutors)
	m.fields[fieldTask].SetSuggestions(opts.TaskNames)
	m.fields[fieldAssignee].SetSuggestions(opts.Assignees)

	values := [fieldStatus]string{s.TaskName, s.AssignedTo, s.Date, s.Time}
	for i := range m.fields {
		m.fields[i].SetValue(values[i])
		m.fields[i].CursorEnd()
		m.fields[i].Blur()
	}
	m.status = 0
	for i, st := range domain.Statuses {
		if st == s.Status {
			m.status = i
		}
	}
	m.mode = modeScheduleForm
	m.err = nil
	m.warnings = nil
	m.formFocus = fieldTask
	return m, m.fields[fieldTask].Focus()
}

func (m Model) handleScheduleForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.board.CancelScheduleEdit()
		m.snap = m.board.Snapshot()
		m.mode = modeBrowse
		m.warnings = nil
		return m, nil
	case "tab", "down":
		return m.focusField((m.formFocus + 1) % fieldCount)
	case "shift+tab", "up":
		return m.focusField((m.formFocus + fieldCount - 1) % fieldCount)
	case "enter":
		s := m.formSchedule()
		if w := board.ValidateSchedule(s); w != nil {
			m.warnings = w
			return m, nil
		}
		m.warnings = nil
		return m, m.mutate("schedule saved", func(ctx context.Context) (bool, error) {
			return m.board.AddOrUpdateSchedule(ctx, s)
		})
	}
	if m.formFocus == fieldStatus {
		switch msg.String() {
		case "left", "h":
			m.status = (m.status + len(domain.Statuses) - 1) % len(domain.Statuses)
		case "right", "l", " ":
			m.status = (m.status + 1) % len(domain.Statuses)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.formFocus], cmd = m.fields[m.formFocus].Update(msg)
	return m, cmd
}

func (m Model) focusField(i int) (tea.Model, tea.Cmd) {
	if m.formFocus < fieldStatus {
		m.fields[m.formFocus].Blur()
	}
	m.formFocus = i
	if i < fieldStatus {
		return m, m.fields[i].Focus()
	}
	return m, nil
}

func (m Model) formSchedule() domain.Schedule {
	return domain.Schedule{
		TaskName:   m.fields[fieldTask].Value(),
		AssignedTo: m.fields[fieldAssignee].Value(),
		Date:       m.fields[fieldDate].Value(),
		Time:       m.fields[fieldTime].Value(),
		Status:     domain.Statuses[m.status],
	}
}

func (m Model) mutate(note string, op func(ctx context.Context) (bool, error)) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		applied, err := op(ctx)
		return boardChangedMsg{applied: applied, note: note, err: err}
	}
}

func (m Model) onSchedules() bool {
	return m.focus >= len(m.snap.Columns)
}

func (m Model) category() domain.Category {
	if m.onSchedules() {
		return ""
	}
	return m.snap.Columns[m.focus].Category
}

func (m Model) itemCount() int {
	if m.onSchedules() {
		return len(m.snap.Schedules)
	}
	return len(m.snap.Columns[m.focus].Tasks)
}

func (m Model) clampCursor(i int) int {
	n := m.itemCount()
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
