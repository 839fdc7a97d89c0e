package storage

import (
	"context"

	"tutor-dashboard/domain"
)

// NoPanels is used when no platform database is configured. Every panel is
// empty.
type NoPanels struct{}

func (NoPanels) Users(context.Context) ([]domain.User, error) {
	return []domain.User{}, nil
}

func (NoPanels) Tutors(context.Context) ([]domain.Tutor, error) {
	return []domain.Tutor{}, nil
}

func (NoPanels) Payments(context.Context) ([]domain.Payment, error) {
	return []domain.Payment{}, nil
}

func (NoPanels) Sessions(context.Context) ([]domain.Session, error) {
	return []domain.Session{}, nil
}

func (NoPanels) SessionNotes(context.Context) ([]domain.SessionNote, error) {
	return []domain.SessionNote{}, nil
}

func (NoPanels) TutorsWithSubjects(context.Context) ([]domain.Subject, error) {
	return []domain.Subject{}, nil
}
