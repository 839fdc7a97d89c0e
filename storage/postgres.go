package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"tutor-dashboard/domain"
)

// Postgres serves the read-only panels from the platform database.
type Postgres struct {
	db *sqlx.DB
}

// OpenPostgres connects to dsn and waits for the database to answer.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err := ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.PingContext(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping cancelled")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

type userRow struct {
	ID        int64       `db:"user_id"`
	FirstName null.String `db:"first_name"`
	LastName  null.String `db:"last_name"`
	Email     null.String `db:"email"`
	Role      null.String `db:"role"`
	PhotoURL  null.String `db:"photo_url"`
	CreatedAt null.Time   `db:"created_at"`
}

func (r userRow) user() domain.User {
	return domain.User{
		ID:        r.ID,
		FirstName: r.FirstName.String,
		LastName:  r.LastName.String,
		Email:     r.Email.String,
		Role:      r.Role.String,
		PhotoURL:  r.PhotoURL.String,
		CreatedAt: r.CreatedAt.Ptr(),
	}
}

type tutorRow struct {
	ID         int64        `db:"tutor_id"`
	UserID     int64        `db:"user_id"`
	SubjectID  null.Int64   `db:"subject_id"`
	Bio        null.String  `db:"bio"`
	HourlyRate null.Float64 `db:"hourly_rate"`

	UUserID    null.Int64  `db:"u_user_id"`
	UFirstName null.String `db:"u_first_name"`
	ULastName  null.String `db:"u_last_name"`
	UEmail     null.String `db:"u_email"`
	URole      null.String `db:"u_role"`
	UPhotoURL  null.String `db:"u_photo_url"`
	UCreatedAt null.Time   `db:"u_created_at"`
}

func (r tutorRow) tutor() domain.Tutor {
	t := domain.Tutor{
		ID:         r.ID,
		UserID:     r.UserID,
		SubjectID:  r.SubjectID.Ptr(),
		Bio:        r.Bio.String,
		HourlyRate: r.HourlyRate.Float64,
	}
	if r.UUserID.Valid {
		u := userRow{
			ID:        r.UUserID.Int64,
			FirstName: r.UFirstName,
			LastName:  r.ULastName,
			Email:     r.UEmail,
			Role:      r.URole,
			PhotoURL:  r.UPhotoURL,
			CreatedAt: r.UCreatedAt,
		}.user()
		t.User = &u
	}
	return t
}

const tutorColumns = `
	t.tutor_id, t.user_id, t.subject_id, t.bio, t.hourly_rate,
	u.user_id AS u_user_id, u.first_name AS u_first_name, u.last_name AS u_last_name,
	u.email AS u_email, u.role AS u_role, u.photo_url AS u_photo_url, u.created_at AS u_created_at
FROM tutors t
LEFT JOIN users u ON u.user_id = t.user_id`

func (p *Postgres) Users(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	q := `SELECT user_id, first_name, last_name, email, role, photo_url, created_at FROM users ORDER BY user_id`
	if err := p.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	out := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.user())
	}
	return out, nil
}

func (p *Postgres) Tutors(ctx context.Context) ([]domain.Tutor, error) {
	var rows []tutorRow
	if err := p.db.SelectContext(ctx, &rows, `SELECT `+tutorColumns+` ORDER BY t.tutor_id`); err != nil {
		return nil, errors.Wrap(err, "querying tutors")
	}
	out := make([]domain.Tutor, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.tutor())
	}
	return out, nil
}

type paymentRow struct {
	ID          int64        `db:"payment_id"`
	SessionID   null.Int64   `db:"session_id"`
	StudentID   null.Int64   `db:"student_id"`
	Amount      null.Float64 `db:"amount"`
	PaymentDate null.Time    `db:"payment_date"`
	Method      null.String  `db:"method"`
	Status      null.String  `db:"status"`
}

func (p *Postgres) Payments(ctx context.Context) ([]domain.Payment, error) {
	var rows []paymentRow
	q := `SELECT payment_id, session_id, student_id, amount, payment_date, method, status
FROM payments ORDER BY payment_date DESC NULLS LAST, payment_id`
	if err := p.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	out := make([]domain.Payment, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Payment{
			ID:          r.ID,
			SessionID:   r.SessionID.Ptr(),
			StudentID:   r.StudentID.Ptr(),
			Amount:      r.Amount.Float64,
			PaymentDate: r.PaymentDate.Ptr(),
			Method:      r.Method.String,
			Status:      r.Status.String,
		})
	}
	return out, nil
}

type sessionRow struct {
	ID        int64       `db:"session_id"`
	TutorID   null.Int64  `db:"tutor_id"`
	StudentID null.Int64  `db:"student_id"`
	SubjectID null.Int64  `db:"subject_id"`
	StartTime null.Time   `db:"start_time"`
	EndTime   null.Time   `db:"end_time"`
	Status    null.String `db:"status"`
}

func (p *Postgres) Sessions(ctx context.Context) ([]domain.Session, error) {
	var rows []sessionRow
	q := `SELECT session_id, tutor_id, student_id, subject_id, start_time, end_time, status
FROM sessions ORDER BY start_time ASC NULLS LAST, session_id`
	if err := p.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	out := make([]domain.Session, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Session{
			ID:        r.ID,
			TutorID:   r.TutorID.Ptr(),
			StudentID: r.StudentID.Ptr(),
			SubjectID: r.SubjectID.Ptr(),
			StartTime: r.StartTime.Ptr(),
			EndTime:   r.EndTime.Ptr(),
			Status:    r.Status.String,
		})
	}
	return out, nil
}

type noteRow struct {
	ID        int64       `db:"note_id"`
	SessionID null.Int64  `db:"session_id"`
	AuthorID  null.Int64  `db:"author_id"`
	Content   null.String `db:"content"`
	CreatedAt null.Time   `db:"created_at"`
}

func (p *Postgres) SessionNotes(ctx context.Context) ([]domain.SessionNote, error) {
	var rows []noteRow
	q := `SELECT note_id, session_id, author_id, content, created_at
FROM session_notes ORDER BY created_at DESC NULLS LAST, note_id`
	if err := p.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying session notes")
	}
	out := make([]domain.SessionNote, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.SessionNote{
			ID:        r.ID,
			SessionID: r.SessionID.Ptr(),
			AuthorID:  r.AuthorID.Ptr(),
			Content:   r.Content.String,
			CreatedAt: r.CreatedAt.Ptr(),
		})
	}
	return out, nil
}

type subjectRow struct {
	ID          int64       `db:"subject_id"`
	Name        null.String `db:"name"`
	Description null.String `db:"description"`
}

// TutorsWithSubjects lists the featured subjects, each with its tutors.
func (p *Postgres) TutorsWithSubjects(ctx context.Context) ([]domain.Subject, error) {
	ids := pq.Array(domain.FeaturedSubjectIDs)

	var subjects []subjectRow
	q := `SELECT subject_id, name, description FROM subjects WHERE subject_id = ANY($1) ORDER BY subject_id`
	if err := p.db.SelectContext(ctx, &subjects, q, ids); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	var tutors []tutorRow
	q = `SELECT ` + tutorColumns + ` WHERE t.subject_id = ANY($1) ORDER BY t.tutor_id`
	if err := p.db.SelectContext(ctx, &tutors, q, ids); err != nil {
		return nil, errors.Wrap(err, "querying subject tutors")
	}

	bySubject := make(map[int64][]domain.Tutor, len(subjects))
	for _, r := range tutors {
		if r.SubjectID.Valid {
			bySubject[r.SubjectID.Int64] = append(bySubject[r.SubjectID.Int64], r.tutor())
		}
	}
	out := make([]domain.Subject, 0, len(subjects))
	for _, s := range subjects {
		tt := bySubject[s.ID]
		if tt == nil {
			tt = []domain.Tutor{}
		}
		out = append(out, domain.Subject{
			ID:          s.ID,
			Name:        s.Name.String,
			Description: s.Description.String,
			Tutors:      tt,
		})
	}
	return out, nil
}
