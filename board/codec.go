package board

import (
	"encoding/json"
	"strings"

	"github.com/bytedance/sonic"

	"tutor-dashboard/domain"
)

// scheduleRecord is the persisted shape of a schedule. Ids only live in memory.
type scheduleRecord struct {
	TaskName   string `json:"taskName"`
	AssignedTo string `json:"assignedTo"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
}

// decodeTaskLists reads a category -> []string object. Entries that are not
// arrays are skipped, as are non-string and blank items.
func decodeTaskLists(data []byte) (map[string][]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw map[string]json.RawMessage
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(raw))
	for name, value := range raw {
		var items []any
		if err := sonic.ConfigStd.Unmarshal(value, &items); err != nil || items == nil {
			continue
		}
		texts := make([]string, 0, len(items))
		for _, item := range items {
			text, ok := item.(string)
			if !ok || strings.TrimSpace(text) == "" {
				continue
			}
			texts = append(texts, text)
		}
		out[name] = texts
	}
	return out, nil
}

func encodeTaskLists(tasks map[domain.Category][]domain.Task) ([]byte, error) {
	out := make(map[string][]string, len(tasks))
	for c, list := range tasks {
		texts := make([]string, 0, len(list))
		for _, t := range list {
			texts = append(texts, t.Text)
		}
		out[string(c)] = texts
	}
	return sonic.ConfigStd.Marshal(out)
}

// decodeSchedules reads a schedule array. Entries that are not schedule objects
// are skipped and counted. Incomplete records are kept as stored so the next
// flush does not erase them; a missing status becomes Pending.
func decodeSchedules(data []byte) ([]domain.Schedule, int, error) {
	if len(data) == 0 {
		return nil, 0, nil
	}
	var raw []json.RawMessage
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}
	out := make([]domain.Schedule, 0, len(raw))
	skipped := 0
	for _, item := range raw {
		var rec scheduleRecord
		if err := sonic.ConfigStd.Unmarshal(item, &rec); err != nil {
			skipped++
			continue
		}
		s := domain.Schedule{
			TaskName:   rec.TaskName,
			AssignedTo: rec.AssignedTo,
			Date:       rec.Date,
			Time:       rec.Time,
			Status:     domain.Status(rec.Status),
		}
		if s.Status == "" {
			s.Status = domain.StatusPending
		}
		out = append(out, s)
	}
	return out, skipped, nil
}

func encodeSchedules(schedules []domain.Schedule) ([]byte, error) {
	out := make([]scheduleRecord, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, scheduleRecord{
			TaskName:   s.TaskName,
			AssignedTo: s.AssignedTo,
			Date:       s.Date,
			Time:       s.Time,
			Status:     string(s.Status),
		})
	}
	return sonic.ConfigStd.Marshal(out)
}
