package registrations

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("registration not found")
	QueryTimeoutDuration = time.Second * 5
)

// Registration is one append-only status record. Corrections add a new row
// with a later date instead of editing history.
type Registration struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	ConferenceID     int64     `json:"conference_id"`
	Status           string    `json:"status"`
	RegistrationDate string    `json:"registration_date"`
	CreatedAt        time.Time `json:"created_at"`
}

// Attendee is one user that holds at least one record for a conference.
type Attendee struct {
	UserID            int64          `json:"user_id"`
	FirstName         string         `json:"first_name"`
	LastName          string         `json:"last_name"`
	Email             string         `json:"email"`
	Company           sql.NullString `json:"company" swaggertype:"string"`
	JobTitle          sql.NullString `json:"job_title" swaggertype:"string"`
	ProfilePictureURL sql.NullString `json:"profile_picture_url" swaggertype:"string"`
}
