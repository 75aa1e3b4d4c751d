package bootstrap

import (
	"admin-console/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	IdentityModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)
