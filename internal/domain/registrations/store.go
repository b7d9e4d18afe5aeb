package registrations

import (
	"context"

	"confms/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Append(ctx context.Context, reg *Registration) error
	ListForUser(ctx context.Context, userID int64) ([]Registration, error)
	ListForUserConference(ctx context.Context, userID, conferenceID int64) ([]Registration, error)
	ListAttendees(ctx context.Context, conferenceID int64, search string, limit, offset int) ([]Attendee, int, error)
	HistoryForUsers(ctx context.Context, conferenceID int64, userIDs []int64) (map[int64][]Registration, error)
	UserIDsForConference(ctx context.Context, conferenceID int64) ([]int64, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) Store {
	return &Repository{db: q}
}

// Append inserts a new status record. History is never updated in place.
func (r *Repository) Append(ctx context.Context, reg *Registration) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO registrations (user_id, conference_id, status, registration_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		reg.UserID, reg.ConferenceID, reg.Status, reg.RegistrationDate,
	).Scan(&reg.ID, &reg.CreatedAt)
}

func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, user_id, conference_id, status, registration_date, created_at
		FROM registrations
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRegistrations(rows)
}

func (r *Repository) ListForUserConference(ctx context.Context, userID, conferenceID int64) ([]Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, user_id, conference_id, status, registration_date, created_at
		FROM registrations
		WHERE user_id = $1 AND conference_id = $2
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, userID, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRegistrations(rows)
}

func (r *Repository) ListAttendees(ctx context.Context, conferenceID int64, search string, limit, offset int) ([]Attendee, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, u.company, u.job_title, u.profile_picture_url,
		       COUNT(*) OVER() AS total
		FROM users u
		WHERE u.id IN (SELECT DISTINCT user_id FROM registrations WHERE conference_id = $1)
		  AND ($2 = '' OR u.first_name ILIKE '%' || $2 || '%'
		       OR u.last_name ILIKE '%' || $2 || '%'
		       OR u.email ILIKE '%' || $2 || '%')
		ORDER BY u.last_name, u.first_name, u.id
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, conferenceID, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Attendee
	total := 0
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(
			&a.UserID, &a.FirstName, &a.LastName, &a.Email,
			&a.Company, &a.JobTitle, &a.ProfilePictureURL, &total,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// HistoryForUsers fetches the full record history for a page of attendees in
// one round trip, keyed by user id.
func (r *Repository) HistoryForUsers(ctx context.Context, conferenceID int64, userIDs []int64) (map[int64][]Registration, error) {
	result := make(map[int64][]Registration)
	if len(userIDs) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, user_id, conference_id, status, registration_date, created_at
		FROM registrations
		WHERE conference_id = $1 AND user_id = ANY($2)
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, conferenceID, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var reg Registration
		if err := rows.Scan(
			&reg.ID, &reg.UserID, &reg.ConferenceID, &reg.Status, &reg.RegistrationDate, &reg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[reg.UserID] = append(result[reg.UserID], reg)
	}
	return result, rows.Err()
}

// UserIDsForConference returns every user holding at least one record for
// the conference, regardless of aggregate status.
func (r *Repository) UserIDsForConference(ctx context.Context, conferenceID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT DISTINCT user_id FROM registrations WHERE conference_id = $1`
	rows, err := r.db.Query(ctx, query, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanRegistrations(rows pgx.Rows) ([]Registration, error) {
	var out []Registration
	for rows.Next() {
		var reg Registration
		if err := rows.Scan(
			&reg.ID, &reg.UserID, &reg.ConferenceID, &reg.Status, &reg.RegistrationDate, &reg.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}
