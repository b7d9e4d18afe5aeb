package badges

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("badge not found")
	QueryTimeoutDuration = time.Second * 5
)

// Badge is the scannable credential issued per attendee and conference.
// Code is the opaque hashid printed into the QR image.
type Badge struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	ConferenceID  int64        `json:"conference_id"`
	Code          string       `json:"code"`
	ScanCount     int          `json:"scan_count"`
	IssuedAt      time.Time    `json:"issued_at"`
	LastScannedAt sql.NullTime `json:"last_scanned_at" swaggertype:"string"`
}
