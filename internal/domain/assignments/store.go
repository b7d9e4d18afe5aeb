package assignments

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	ListForUser(ctx context.Context, userID int64) ([]Assignment, error)
	ListForConference(ctx context.Context, conferenceID int64, limit, offset int) ([]Assignment, int, error)
	GetByID(ctx context.Context, id int64) (*Assignment, error)
	Upsert(ctx context.Context, a *Assignment) error
	SetActive(ctx context.Context, userID, conferenceID int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT a.id, a.user_id, a.conference_id, COALESCE(c.name, ''), a.permissions, a.is_active,
		       a.created_at, a.updated_at
		FROM conference_assignments a
		LEFT JOIN conferences c ON c.id = a.conference_id
		WHERE a.user_id = $1
		ORDER BY a.conference_id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAssignments(rows, nil)
}

func (r *Repository) ListForConference(ctx context.Context, conferenceID int64, limit, offset int) ([]Assignment, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT a.id, a.user_id, a.conference_id, COALESCE(c.name, ''), a.permissions, a.is_active,
		       a.created_at, a.updated_at,
		       COUNT(*) OVER() AS total
		FROM conference_assignments a
		LEFT JOIN conferences c ON c.id = a.conference_id
		WHERE a.conference_id = $1
		ORDER BY a.user_id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, conferenceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	total := 0
	out, err := scanAssignments(rows, &total)
	return out, total, err
}

func scanAssignments(rows pgx.Rows, total *int) ([]Assignment, error) {
	var out []Assignment
	for rows.Next() {
		var a Assignment
		dest := []any{
			&a.ID, &a.UserID, &a.ConferenceID, &a.ConferenceName,
			&a.Permissions, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
		}
		if total != nil {
			dest = append(dest, total)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if a.Permissions == nil {
			a.Permissions = json.RawMessage(`{}`)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT a.id, a.user_id, a.conference_id, COALESCE(c.name, ''), a.permissions, a.is_active,
		       a.created_at, a.updated_at
		FROM conference_assignments a
		LEFT JOIN conferences c ON c.id = a.conference_id
		WHERE a.id = $1
	`
	a := &Assignment{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.ConferenceID, &a.ConferenceName,
		&a.Permissions, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// Upsert writes the grant map for a user and conference, replacing any
// existing assignment's permissions and active flag.
func (r *Repository) Upsert(ctx context.Context, a *Assignment) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if a.Permissions == nil {
		a.Permissions = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO conference_assignments (user_id, conference_id, permissions, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, conference_id)
		DO UPDATE SET permissions = EXCLUDED.permissions, is_active = EXCLUDED.is_active, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, a.UserID, a.ConferenceID, a.Permissions, a.IsActive).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *Repository) SetActive(ctx context.Context, userID, conferenceID int64, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE conference_assignments
		SET is_active = $1, updated_at = NOW()
		WHERE user_id = $2 AND conference_id = $3
	`
	tag, err := r.db.Exec(ctx, query, active, userID, conferenceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM conference_assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
