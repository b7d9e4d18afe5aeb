package assignments

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("assignment not found")
	ErrDuplicate         = errors.New("user already assigned to this conference")
	QueryTimeoutDuration = time.Second * 5
)

// Assignment links a user to a conference with a JSON permission grant map.
// Permissions stays raw: historical rows hold either a JSON object or a
// JSON-encoded string of one, and normalization happens at the access layer,
// not here.
type Assignment struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	ConferenceID   int64           `json:"conference_id"`
	ConferenceName string          `json:"conference_name"`
	Permissions    json.RawMessage `json:"permissions"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
