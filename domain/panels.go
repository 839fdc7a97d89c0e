package domain

import (
	"strconv"
	"strings"
	"time"
)

// User is a platform account (tutor, student or staff).
type User struct {
	ID        int64      `json:"user_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	PhotoURL  string     `json:"photo_url,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// FullName joins the first and last name, skipping blanks.
func (u User) FullName() string {
	return strings.TrimSpace(strings.Join(strings.Fields(u.FirstName+" "+u.LastName), " "))
}

// Tutor is a tutor profile with its account details.
type Tutor struct {
	ID         int64   `json:"tutor_id"`
	UserID     int64   `json:"user_id"`
	SubjectID  *int64  `json:"subject_id,omitempty"`
	Bio        string  `json:"bio,omitempty"`
	HourlyRate float64 `json:"hourly_rate"`
	User       *User   `json:"users,omitempty"`
}

// DisplayName is the name shown in assignee pickers.
func (t Tutor) DisplayName() string {
	if t.User != nil {
		if name := t.User.FullName(); name != "" {
			return name
		}
		if t.User.Email != "" {
			return t.User.Email
		}
	}
	return "Tutor " + strconv.FormatInt(t.ID, 10)
}

// Payment is a single payment made for a session.
type Payment struct {
	ID          int64      `json:"payment_id"`
	SessionID   *int64     `json:"session_id,omitempty"`
	StudentID   *int64     `json:"student_id,omitempty"`
	Amount      float64    `json:"amount"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	Method      string     `json:"method,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// Session is a booked tutoring session.
type Session struct {
	ID        int64      `json:"session_id"`
	TutorID   *int64     `json:"tutor_id,omitempty"`
	StudentID *int64     `json:"student_id,omitempty"`
	SubjectID *int64     `json:"subject_id,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Status    string     `json:"status,omitempty"`
}

// SessionNote is a note written about a session.
type SessionNote struct {
	ID        int64      `json:"note_id"`
	SessionID *int64     `json:"session_id,omitempty"`
	AuthorID  *int64     `json:"author_id,omitempty"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Subject is a taught subject, optionally with the tutors teaching it.
type Subject struct {
	ID          int64   `json:"subject_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Tutors      []Tutor `json:"tutors"`
}

// FeaturedSubjectIDs are the subjects listed by the tutors-with-subjects panel
// (Algebra and Physics).
var FeaturedSubjectIDs = []int64{1, 3}
