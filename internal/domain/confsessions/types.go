package confsessions

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("session not found")
	ErrOverlap           = errors.New("session overlaps another in the same room")
	QueryTimeoutDuration = time.Second * 5
)

type Session struct {
	ID           int64          `json:"id"`
	ConferenceID int64          `json:"conference_id"`
	Title        string         `json:"title"`
	Description  sql.NullString `json:"description" swaggertype:"string"`
	Speaker      string         `json:"speaker"`
	Room         sql.NullString `json:"room" swaggertype:"string"`
	StartsAt     time.Time      `json:"starts_at"`
	EndsAt       time.Time      `json:"ends_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
