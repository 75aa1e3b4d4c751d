package api

import (
	"errors"
	"log/slog"
	"net/http"

	resdto "admin-console/internal/handler/dto/response"
	"admin-console/internal/handler/httperr"
	"admin-console/internal/infra"
	"admin-console/internal/pkg/config"
	"admin-console/internal/pkg/cookie"
	"admin-console/internal/pkg/errs"
	"admin-console/internal/usecase"
	"admin-console/internal/usecase/queries"
	"admin-console/internal/usecase/readmodel"

	"github.com/gin-gonic/gin"
)

const (
	permissionPlatformAdmin = "platform:admin"
	rolePlatformAdmin       = "platform_admin"
	roleUser                = "user"
)

// StatusHandler serves the request-scoped access decision. The edge gate and
// the client gate both consume it, so there is a single source of truth for
// "is this caller a platform admin".
type StatusHandler struct {
	access queries.AccessQueries
	cfg    config.Config
}

func NewStatusHandler(access queries.AccessQueries, cfg config.Config) *StatusHandler {
	return &StatusHandler{
		access: access,
		cfg:    cfg,
	}
}

// check runs resolution + classification and flushes any refreshed session
// cookies before a response is written, on success and failure alike.
func (h *StatusHandler) check(c *gin.Context) (*readmodel.AccessDecision, error) {
	jar := cookie.NewGinJar(c, h.cfg.Cookie)
	accessToken, refreshToken := cookie.RequestTokens(c, jar)

	decision, refreshed, err := h.access.Check(c.Request.Context(), usecase.Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	if refreshed != nil {
		cookie.WriteSession(jar, h.cfg.Cookie, refreshed.AccessToken, refreshed.RefreshToken, refreshed.ExpiresIn)
	}
	return decision, err
}

// AdminCheck handles GET /api/qa/admin-check.
func (h *StatusHandler) AdminCheck(c *gin.Context) {
	decision, err := h.check(c)
	if err != nil {
		abortWithAccessError(c, err)
		return
	}

	if !decision.Authenticated {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.ErrUnauthenticated, "Unauthorized")
		return
	}

	c.Set("user_id", decision.UserID)
	c.JSON(http.StatusOK, resdto.AdminCheckResponse{
		IsPlatformAdmin: decision.IsAdmin,
		Email:           optionalEmail(decision.Email),
	})
}

// Permissions handles GET /api/v1/me/permissions. Same decision, projected
// into the permissions shape.
func (h *StatusHandler) Permissions(c *gin.Context) {
	decision, err := h.check(c)
	if err != nil {
		abortWithAccessError(c, err)
		return
	}

	if !decision.Authenticated {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.ErrUnauthenticated, "Unauthorized")
		return
	}

	permissions := []string{}
	role := roleUser
	if decision.IsAdmin {
		permissions = []string{permissionPlatformAdmin}
		role = rolePlatformAdmin
	}

	c.Set("user_id", decision.UserID)
	c.JSON(http.StatusOK, resdto.PermissionsResponse{
		Email:       optionalEmail(decision.Email),
		Permissions: permissions,
		Role:        role,
	})
}

func optionalEmail(email string) *string {
	if email == "" {
		return nil
	}
	return &email
}

// abortWithAccessError maps backend failures onto the error taxonomy:
// configuration problems and upstream failures are both 500-class, with
// generic messages that never leak which variable or backend broke.
func abortWithAccessError(c *gin.Context, err error) {
	if infra.IsKind(err, infra.KindConfig) || errors.Is(err, errs.ErrServerConfiguration) {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Server configuration error")
		return
	}
	slog.Error("access check failed", "error", err.Error())
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Server error")
}
