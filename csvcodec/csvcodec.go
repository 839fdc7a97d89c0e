// Package csvcodec encodes the board to CSV and decodes schedule uploads.
//
// The format is deliberately naive: rows are joined with "\n", fields are
// joined with "," and nothing is escaped. Task text is wrapped in double
// quotes, schedule fields are not, and the decoder does not understand quotes
// at all. Values containing commas or quotes do not round-trip.
package csvcodec

import (
	"strings"

	"tutor-dashboard/domain"
)

const (
	MIMEType          = "text/csv"
	TasksFilename     = "tasks.csv"
	SchedulesFilename = "schedules.csv"

	TaskHeader     = "Category,Task"
	ScheduleHeader = "Task Name,Assigned To,Date,Time,Status"

	scheduleFields = 5
)

// TaskRow is one exported task line.
type TaskRow struct {
	Category domain.Category
	Text     string
}

// EncodeTasks renders the header and one `category,"text"` line per row.
func EncodeTasks(rows []TaskRow) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, TaskHeader)
	for _, r := range rows {
		lines = append(lines, string(r.Category)+`,"`+r.Text+`"`)
	}
	return strings.Join(lines, "\n")
}

// EncodeSchedules renders the header and one unquoted line per schedule.
func EncodeSchedules(schedules []domain.Schedule) string {
	lines := make([]string, 0, len(schedules)+1)
	lines = append(lines, ScheduleHeader)
	for _, s := range schedules {
		lines = append(lines, strings.Join([]string{
			s.TaskName,
			s.AssignedTo,
			s.Date,
			s.Time,
			string(s.Status),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// DecodeSchedules parses an uploaded schedule file. The first line is the
// header and is always skipped. Blank lines are ignored. A line with fewer
// than five fields, or with an empty value among the first five, is counted
// in dropped. Fields past the fifth are ignored.
func DecodeSchedules(raw string) (accepted []domain.Schedule, dropped int) {
	lines := strings.Split(raw, "\n")
	if len(lines) == 0 {
		return nil, 0
	}
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < scheduleFields {
			dropped++
			continue
		}
		fields = fields[:scheduleFields]
		if hasEmpty(fields) {
			dropped++
			continue
		}
		accepted = append(accepted, domain.Schedule{
			TaskName:   fields[0],
			AssignedTo: fields[1],
			Date:       fields[2],
			Time:       fields[3],
			Status:     domain.Status(fields[4]),
		})
	}
	return accepted, dropped
}

func hasEmpty(fields []string) bool {
	for _, f := range fields {
		if f == "" {
			return true
		}
	}
	return false
}
