package bootstrap

import (
	"admin-console/internal/infra/identity"
	"admin-console/internal/pkg/config"
	"admin-console/internal/usecase"
	"admin-console/internal/usecase/queries"

	"go.uber.org/fx"
)

// IdentityModule constructs both provider clients once, at the composition
// root. The anon client powers session resolution; the service client is
// the only one allowed near the bulk user listing.
var IdentityModule = fx.Module("identity",
	fx.Provide(
		fx.Annotate(
			func(cfg config.Config) *identity.Client {
				return identity.NewAnonClient(cfg.Identity)
			},
			fx.ResultTags(`name:"anon"`),
		),
		fx.Annotate(
			func(cfg config.Config) *identity.Client {
				return identity.NewServiceClient(cfg.Identity)
			},
			fx.ResultTags(`name:"service"`),
		),
		fx.Annotate(
			identity.NewGateway,
			fx.ParamTags(`name:"anon"`),
			fx.As(new(usecase.IdentityGateway)),
		),
		fx.Annotate(
			identity.NewAdminGateway,
			fx.ParamTags(`name:"service"`),
			fx.As(new(queries.DirectoryLister)),
		),
	),
)
