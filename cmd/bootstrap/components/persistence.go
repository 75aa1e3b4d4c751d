package components

import (
	"admin-console/internal/infra/readstore"
	"admin-console/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewMembershipStore,
	),
)

// NewMembershipStore yields a nil store when no database is configured; the
// classifier treats a required-but-missing store as a configuration error.
func NewMembershipStore(pool *pgxpool.Pool) usecase.MembershipStore {
	if pool == nil {
		return nil
	}
	return readstore.NewMembershipStore(pool)
}
