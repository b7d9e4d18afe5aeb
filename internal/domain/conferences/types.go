package conferences

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("conference not found")
	ErrDuplicateName     = errors.New("a conference with that name already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Conference struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description sql.NullString `json:"description" swaggertype:"string"`
	Venue       sql.NullString `json:"venue" swaggertype:"string"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Ref is the id and name pair used when the full row is not needed.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Filters struct {
	Search     string
	ActiveOnly bool
}
