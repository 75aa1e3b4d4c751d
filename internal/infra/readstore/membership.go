package readstore

import (
	"context"
	"errors"

	"admin-console/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier is the slice of pgxpool.Pool the store needs. pgxmock implements
// it for tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MembershipStore reads the platform_admins marker table. Rows are created
// and removed out-of-band; this system never mutates them.
type MembershipStore struct {
	db Querier
}

func NewMembershipStore(db Querier) *MembershipStore {
	return &MembershipStore{db: db}
}

const membershipQuery = `SELECT 1 FROM platform_admins WHERE user_id = $1 LIMIT 1`

// Exists reports whether a membership row exists for the user. "No row" is a
// normal negative result; only genuine query failures return an error.
func (s *MembershipStore) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var marker int
	err := s.db.QueryRow(ctx, membershipQuery, userID).Scan(&marker)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, infra.WrapInfraErr("failed to query platform_admins", err, infra.KindDBFailure)
	}
	return true, nil
}
