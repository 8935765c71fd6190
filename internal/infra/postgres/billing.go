package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizline-service/internal/app"
)

// Billing persists access grants in Postgres. A grant is issued once per
// (user, quiz) and is permanent.
type Billing struct {
	pool *pgxpool.Pool
}

var _ app.Billing = (*Billing)(nil)

func NewBilling(pool *pgxpool.Pool) *Billing {
	return &Billing{pool: pool}
}

func (b *Billing) HasAccessGrant(ctx context.Context, userID, quizID string) (bool, error) {
	var exists bool
	err := b.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM access_grants WHERE user_id=$1 AND quiz_id=$2)`,
		userID, quizID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check access grant: %w", err)
	}
	return exists, nil
}

func (b *Billing) GrantAccess(ctx context.Context, userID, quizID string) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO access_grants (user_id, quiz_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, quizID)
	if err != nil {
		return fmt.Errorf("grant access: %w", err)
	}
	return nil
}
