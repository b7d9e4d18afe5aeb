package confsessions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id int64) (*Session, error)
	ListForConference(ctx context.Context, conferenceID int64, limit, offset int) ([]Session, int, error)
	StartingBetween(ctx context.Context, from, to time.Time) ([]Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, s *Session) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO conference_sessions (conference_id, title, description, speaker, room, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		s.ConferenceID, s.Title, s.Description, s.Speaker, s.Room, s.StartsAt, s.EndsAt,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// exclusion constraint on (room, tstzrange(starts_at, ends_at))
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			return ErrOverlap
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, conference_id, title, description, speaker, room, starts_at, ends_at, created_at, updated_at
		FROM conference_sessions
		WHERE id = $1
	`
	s := &Session{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ConferenceID, &s.Title, &s.Description, &s.Speaker,
		&s.Room, &s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *Repository) ListForConference(ctx context.Context, conferenceID int64, limit, offset int) ([]Session, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, conference_id, title, description, speaker, room, starts_at, ends_at, created_at, updated_at,
		       COUNT(*) OVER() AS total
		FROM conference_sessions
		WHERE conference_id = $1
		ORDER BY starts_at, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, conferenceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Session
	total := 0
	for rows.Next() {
		var s Session
		if err := rows.Scan(
			&s.ID, &s.ConferenceID, &s.Title, &s.Description, &s.Speaker,
			&s.Room, &s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// StartingBetween returns sessions whose start time falls in [from, to).
// Reminder jobs poll with non-overlapping windows so each session is picked
// up once.
func (r *Repository) StartingBetween(ctx context.Context, from, to time.Time) ([]Session, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, conference_id, title, description, speaker, room, starts_at, ends_at, created_at, updated_at
		FROM conference_sessions
		WHERE starts_at >= $1 AND starts_at < $2
		ORDER BY starts_at, id
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(
			&s.ID, &s.ConferenceID, &s.Title, &s.Description, &s.Speaker,
			&s.Room, &s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, s *Session) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE conference_sessions
		SET title = $1, description = $2, speaker = $3, room = $4, starts_at = $5, ends_at = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		s.Title, s.Description, s.Speaker, s.Room, s.StartsAt, s.EndsAt, s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			return ErrOverlap
		}
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM conference_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
