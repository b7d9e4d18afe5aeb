package badges

import (
	"context"
	"errors"

	"confms/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Issue(ctx context.Context, b *Badge) error
	GetByCode(ctx context.Context, code string) (*Badge, error)
	GetForUser(ctx context.Context, userID, conferenceID int64) (*Badge, error)
	RecordScan(ctx context.Context, badgeID int64) error
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) Store {
	return &Repository{db: q}
}

// Issue creates the badge if missing and returns the stored row either way,
// so re-requesting a badge never mints a second code.
func (r *Repository) Issue(ctx context.Context, b *Badge) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO badges (user_id, conference_id, code)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, conference_id)
		DO UPDATE SET code = badges.code
		RETURNING id, code, scan_count, issued_at, last_scanned_at
	`
	return r.db.QueryRow(ctx, query, b.UserID, b.ConferenceID, b.Code).
		Scan(&b.ID, &b.Code, &b.ScanCount, &b.IssuedAt, &b.LastScannedAt)
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, user_id, conference_id, code, scan_count, issued_at, last_scanned_at
		FROM badges
		WHERE code = $1
	`
	b := &Badge{}
	err := r.db.QueryRow(ctx, query, code).Scan(
		&b.ID, &b.UserID, &b.ConferenceID, &b.Code, &b.ScanCount, &b.IssuedAt, &b.LastScannedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *Repository) GetForUser(ctx context.Context, userID, conferenceID int64) (*Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, user_id, conference_id, code, scan_count, issued_at, last_scanned_at
		FROM badges
		WHERE user_id = $1 AND conference_id = $2
	`
	b := &Badge{}
	err := r.db.QueryRow(ctx, query, userID, conferenceID).Scan(
		&b.ID, &b.UserID, &b.ConferenceID, &b.Code, &b.ScanCount, &b.IssuedAt, &b.LastScannedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *Repository) RecordScan(ctx context.Context, badgeID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `UPDATE badges SET scan_count = scan_count + 1, last_scanned_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, badgeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
