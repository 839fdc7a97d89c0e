package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tutor-dashboard/board"
	"tutor-dashboard/domain"
)

const minColumnWidth = 18

// View renders the board, the schedule list and the active form.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Tutoring board"))
	b.WriteString("\n")
	b.WriteString(m.renderColumns())
	b.WriteString("\n")
	b.WriteString(m.renderSchedules())
	b.WriteString("\n")

	switch m.mode {
	case modeTaskInput:
		b.WriteString(m.renderTaskInput())
		b.WriteString("\n")
	case modeScheduleForm:
		b.WriteString(m.renderScheduleForm())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) columnWidth() int {
	n := len(m.snap.Columns)
	if n == 0 || m.width == 0 {
		return minColumnWidth
	}
	w := m.width/n - 4
	if w < minColumnWidth {
		w = minColumnWidth
	}
	return w
}

func (m Model) renderColumns() string {
	width := m.columnWidth()
	cols := make([]string, 0, len(m.snap.Columns))
	for i, col := range m.snap.Columns {
		active := i == m.focus
		header := m.styles.ColumnHeader
		frame := m.styles.Column
		if active {
			header = m.styles.ColumnHeaderActive
			frame = m.styles.ColumnActive
		}

		lines := []string{header.Render(string(col.Category))}
		if len(col.Tasks) == 0 {
			lines = append(lines, m.styles.Empty.Render("no tasks"))
		}
		for j, t := range col.Tasks {
			lines = append(lines, m.renderItem(t.Text, active && j == m.cursor, isEditingTask(m.snap, col.Category, j)))
		}
		cols = append(cols, frame.Width(width).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderSchedules() string {
	active := m.onSchedules()
	header := m.styles.ColumnHeader
	frame := m.styles.Column
	if active {
		header = m.styles.ColumnHeaderActive
		frame = m.styles.ColumnActive
	}

	lines := []string{header.Render("Schedules")}
	if len(m.snap.Schedules) == 0 {
		lines = append(lines, m.styles.Empty.Render("no schedules"))
	}
	for i, s := range m.snap.Schedules {
		editing := m.snap.EditingSchedule != nil && *m.snap.EditingSchedule == i
		lines = append(lines, m.renderItem(scheduleLine(s), active && i == m.cursor, editing))
	}
	return frame.Render(strings.Join(lines, "\n"))
}

func (m Model) renderItem(text string, cursor, editing bool) string {
	prefix := "  "
	style := m.styles.Item
	if cursor {
		prefix = "> "
		style = m.styles.ItemCursor
	}
	if editing {
		style = m.styles.ItemEditing
		text += " (editing)"
	}
	return style.Render(prefix + text)
}

func (m Model) renderTaskInput() string {
	verb := "New task in"
	if m.snap.EditingTask != nil {
		verb = "Update task in"
	}
	return fmt.Sprintf("%s %s: %s", verb, m.category(), m.input.View())
}

func (m Model) renderScheduleForm() string {
	title := "Create schedule"
	if m.snap.EditingSchedule != nil {
		title = "Update schedule"
	}
	lines := []string{m.styles.ColumnHeaderActive.Render(title)}
	for i := 0; i < fieldCount; i++ {
		label := m.styles.FormLabel
		if i == m.formFocus {
			label = m.styles.FormLabelActive
		}
		value := ""
		if i == fieldStatus {
			value = "< " + string(domain.Statuses[m.status]) + " >"
		} else {
			value = m.fields[i].View()
		}
		line := label.Render(fieldLabels[i]) + value
		if i < fieldStatus {
			if w, ok := m.warnings[fieldKeys[i]]; ok {
				line += "  " + m.styles.FormWarning.Render(w)
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return m.styles.StatusError.Render("error: " + m.err.Error())
	}
	if m.message != "" {
		return m.styles.StatusBar.Render(m.message)
	}
	switch m.mode {
	case modeTaskInput:
		return m.styles.Hint.Render("enter save • esc cancel")
	case modeScheduleForm:
		return m.styles.Hint.Render("tab next field • ←/→ status • enter save • esc cancel")
	default:
		return m.styles.Hint.Render("←/→ column • ↑/↓ move • a add • e edit • d delete • esc cancel edit • q quit")
	}
}

func scheduleLine(s domain.Schedule) string {
	return fmt.Sprintf("%s | %s | %s %s | %s", s.TaskName, s.AssignedTo, s.Date, s.Time, s.Status)
}

func isEditingTask(snap board.Snapshot, c domain.Category, idx int) bool {
	return snap.EditingTask != nil && snap.EditingTask.Category == c && snap.EditingTask.Index == idx
}
