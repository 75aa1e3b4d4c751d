package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"admin-console/internal/handler/api"
	dto "admin-console/internal/handler/dto/response"
	"admin-console/internal/handler/middleware"
	"admin-console/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	statusHandler *api.StatusHandler,
	usersHandler *api.UsersHandler,
	authHandler *api.AuthHandler,
	gate *middleware.AccessGate,
) {
	setupMiddleware(engine, cfg, gate)
	setupRoutes(engine, cfg, statusHandler, usersHandler, authHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, gate *middleware.AccessGate) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
	// The gate decides per path whether the request is public; API routes
	// authorize themselves.
	engine.Use(gate.Handler())
}

func setupRoutes(
	engine *gin.Engine,
	cfg config.Config,
	statusHandler *api.StatusHandler,
	usersHandler *api.UsersHandler,
	authHandler *api.AuthHandler,
) {
	engine.GET("/health", healthCheck)
	engine.GET("/login", authHandler.LoginPage)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Protected pages; the access gate fronts everything not on the public
	// allow-list.
	addRoutes(&engine.RouterGroup, []route{
		{Method: http.MethodGet, Path: "/", Handler: protectedPage("dashboard")},
		{Method: http.MethodGet, Path: "/users", Handler: protectedPage("users")},
	})

	apiGroup := engine.Group("/api")
	{
		apiGroup.GET("/public-env", publicEnv(cfg))

		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
				{Method: http.MethodPost, Path: "/logout", Handler: authHandler.Logout},
			})
		}

		qa := apiGroup.Group("/qa")
		{
			addRoutes(qa, []route{
				{Method: http.MethodGet, Path: "/admin-check", Handler: statusHandler.AdminCheck},
			})
		}

		v1 := apiGroup.Group("/v1")
		{
			addRoutes(v1, []route{
				{Method: http.MethodGet, Path: "/me/permissions", Handler: statusHandler.Permissions},
			})
		}

		admin := apiGroup.Group("/admin")
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/users", Handler: usersHandler.List},
				{Method: http.MethodGet, Path: "/users/count", Handler: usersHandler.Count},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func publicEnv(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only browser-safe values; the service key never leaves the process.
		c.JSON(http.StatusOK, dto.PublicEnvResponse{
			BackendURL: cfg.Identity.BackendURL,
			AnonKey:    cfg.Identity.AnonKey,
		})
	}
}

// protectedPage stands in for the dashboard views; reaching it at all means
// the gate let the request through.
func protectedPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"page": name,
		})
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
