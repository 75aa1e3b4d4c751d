package components

import (
	"admin-console/internal/handler"
	"admin-console/internal/handler/api"
	"admin-console/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewStatusHandler,
		api.NewUsersHandler,
		api.NewAuthHandler,
		middleware.NewAccessGate,
	),
	fx.Invoke(handler.NewRouter),
)
