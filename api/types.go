package api

import (
	"context"

	"tutor-dashboard/board"
	"tutor-dashboard/domain"
)

// Panels abstracts the read-only data sources behind the panel endpoints.
type Panels interface {
	Users(ctx context.Context) ([]domain.User, error)
	Tutors(ctx context.Context) ([]domain.Tutor, error)
	Payments(ctx context.Context) ([]domain.Payment, error)
	Sessions(ctx context.Context) ([]domain.Session, error)
	SessionNotes(ctx context.Context) ([]domain.SessionNote, error)
	TutorsWithSubjects(ctx context.Context) ([]domain.Subject, error)
}

// Board is the part of the board store the HTTP surface drives.
type Board interface {
	Snapshot() board.Snapshot
	FormOptions(tutors []domain.Tutor) board.FormOptions

	AddOrUpdateTask(ctx context.Context, category domain.Category, text string) (bool, error)
	BeginEditTaskByID(id string) (board.TaskRef, domain.Task, error)
	DeleteTaskByID(ctx context.Context, id string) error
	CancelTaskEdit()
	ExportTasksCSV() string

	AddOrUpdateSchedule(ctx context.Context, s domain.Schedule) (bool, error)
	BeginEditScheduleByID(id string) (int, domain.Schedule, error)
	DeleteScheduleByID(ctx context.Context, id string) error
	CancelScheduleEdit()
	ExportSchedulesCSV() string
	ImportSchedulesCSV(ctx context.Context, raw string) (imported, dropped int, err error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type taskRequest struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

type mutationResponse struct {
	Applied  bool              `json:"applied"`
	Warnings map[string]string `json:"warnings,omitempty"`
	Board    board.Snapshot    `json:"board"`
}

type taskEditResponse struct {
	Ref  board.TaskRef `json:"ref"`
	Task domain.Task   `json:"task"`
}

type scheduleEditResponse struct {
	Index    int             `json:"index"`
	Schedule domain.Schedule `json:"schedule"`
}

type importResponse struct {
	Imported int            `json:"imported"`
	Dropped  int            `json:"dropped"`
	Board    board.Snapshot `json:"board"`
}
