package storage

import (
	"context"
	"fmt"

	"confms/internal/domain/assignments"
	"confms/internal/domain/badges"
	"confms/internal/domain/conferences"
	"confms/internal/domain/confsessions"
	"confms/internal/domain/pushtokens"
	"confms/internal/domain/registrations"
	"confms/internal/domain/users"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool          *pgxpool.Pool
	Users         users.Store
	Conferences   conferences.Store
	Sessions      confsessions.Store
	Assignments   assignments.Store
	Registrations registrations.Store
	Badges        badges.Store
	PushTokens    pushtokens.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:          db,
		Users:         users.NewRepository(db),
		Conferences:   conferences.NewRepository(db),
		Sessions:      confsessions.NewRepository(db),
		Assignments:   assignments.NewRepository(db),
		Registrations: registrations.NewRepository(db),
		Badges:        badges.NewRepository(db),
		PushTokens:    pushtokens.NewRepository(db),
	}
}

// CheckinTx is a tx-scoped pair of repos for a badge scan: the status record
// and the badge counters move together or not at all.
type CheckinTx struct {
	Registrations registrations.Store
	Badges        badges.Store
}

// WithCheckinTx runs a badge-scan unit of work atomically.
func (c *Container) WithCheckinTx(ctx context.Context, fn func(s *CheckinTx) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil")
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	s := &CheckinTx{
		Registrations: registrations.NewRepository(tx),
		Badges:        badges.NewRepository(tx),
	}

	if err := fn(s); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
