package components

import (
	"admin-console/internal/pkg/clock"
	"admin-console/internal/pkg/config"
	"admin-console/internal/usecase"
	"admin-console/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) (usecase.AdminPolicy, error) {
		return usecase.NewAdminPolicy(cfg.Admin)
	},
	usecase.NewSessionResolver,
	usecase.NewAdminClassifier,
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewAccessQueries,
		queries.NewDirectoryQueries,
	),
)
