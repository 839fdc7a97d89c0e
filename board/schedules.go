package board

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"tutor-dashboard/csvcodec"
	"tutor-dashboard/domain"
)

// AddOrUpdateSchedule books s. Any missing required field makes it a no-op
// with applied=false. An empty status becomes Pending. When a pending edit
// targets a schedule that still exists it is replaced in place, otherwise s is
// appended.
func (s *Store) AddOrUpdateSchedule(ctx context.Context, sched domain.Schedule) (bool, error) {
	if ValidateSchedule(sched) != nil {
		return false, nil
	}
	if sched.Status == "" {
		sched.Status = domain.StatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	if s.scheduleEdit != "" {
		idx = indexOfSchedule(s.schedules, s.scheduleEdit)
	}
	if idx >= 0 {
		sched.ID = s.schedules[idx].ID
		s.schedules[idx] = sched
	} else {
		sched.ID = s.newID()
		s.schedules = append(s.schedules, sched)
	}
	s.scheduleEdit = ""

	return true, s.flushSchedules(ctx)
}

// DeleteSchedule removes the schedule at index.
func (s *Store) DeleteSchedule(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteSchedule(ctx, index)
}

// DeleteScheduleByID removes the schedule with the given id.
func (s *Store) DeleteScheduleByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfSchedule(s.schedules, id)
	if idx < 0 {
		return fmt.Errorf("%w: schedule %s", ErrNotFound, id)
	}
	return s.deleteSchedule(ctx, idx)
}

func (s *Store) deleteSchedule(ctx context.Context, index int) error {
	if err := s.checkScheduleIndex(index); err != nil {
		return err
	}
	removed := s.schedules[index]
	s.schedules = append(s.schedules[:index:index], s.schedules[index+1:]...)
	if s.scheduleEdit == removed.ID {
		s.scheduleEdit = ""
	}
	return s.flushSchedules(ctx)
}

// BeginEditSchedule marks the schedule at index as the pending edit target and
// returns it.
func (s *Store) BeginEditSchedule(index int) (domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkScheduleIndex(index); err != nil {
		return domain.Schedule{}, err
	}
	s.scheduleEdit = s.schedules[index].ID
	return s.schedules[index], nil
}

// BeginEditScheduleByID is BeginEditSchedule addressed by id. It also returns
// the schedule's current position.
func (s *Store) BeginEditScheduleByID(id string) (int, domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfSchedule(s.schedules, id)
	if idx < 0 {
		return 0, domain.Schedule{}, fmt.Errorf("%w: schedule %s", ErrNotFound, id)
	}
	s.scheduleEdit = id
	return idx, s.schedules[idx], nil
}

// CancelScheduleEdit drops the pending schedule edit, if any.
func (s *Store) CancelScheduleEdit() {
	s.mu.Lock()
	s.scheduleEdit = ""
	s.mu.Unlock()
}

// PendingScheduleEdit returns the position of the schedule being edited.
func (s *Store) PendingScheduleEdit() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingScheduleEdit()
}

func (s *Store) pendingScheduleEdit() (int, bool) {
	if s.scheduleEdit == "" {
		return 0, false
	}
	idx := indexOfSchedule(s.schedules, s.scheduleEdit)
	return idx, idx >= 0
}

// ScheduleIndex resolves a schedule id to its current position.
func (s *Store) ScheduleIndex(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfSchedule(s.schedules, id)
	return idx, idx >= 0
}

// Schedules returns a copy of the schedule book.
func (s *Store) Schedules() []domain.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Schedule{}, s.schedules...)
}

// ExportSchedulesCSV renders the schedule book as CSV.
func (s *Store) ExportSchedulesCSV() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return csvcodec.EncodeSchedules(s.schedules)
}

// ImportSchedulesCSV appends every acceptable row of raw to the schedule book
// in file order and flushes once. Rejected rows are counted in dropped.
func (s *Store) ImportSchedulesCSV(ctx context.Context, raw string) (imported, dropped int, err error) {
	rows, dropped := csvcodec.DecodeSchedules(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		row.ID = s.newID()
		s.schedules = append(s.schedules, row)
	}
	s.log.WithFields(log.Fields{"imported": len(rows), "dropped": dropped}).Info("schedules imported")
	if len(rows) == 0 {
		return 0, dropped, nil
	}
	return len(rows), dropped, s.flushSchedules(ctx)
}

func (s *Store) checkScheduleIndex(index int) error {
	if index < 0 || index >= len(s.schedules) {
		return fmt.Errorf("%w: schedules[%d]", ErrIndexOutOfRange, index)
	}
	return nil
}

func indexOfSchedule(list []domain.Schedule, id string) int {
	for i, sc := range list {
		if sc.ID == id {
			return i
		}
	}
	return -1
}
