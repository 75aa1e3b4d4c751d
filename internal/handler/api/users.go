package api

import (
	"net/http"
	"strconv"

	resdto "admin-console/internal/handler/dto/response"
	"admin-console/internal/handler/httperr"
	"admin-console/internal/domain/directory"
	"admin-console/internal/pkg/config"
	"admin-console/internal/pkg/cookie"
	"admin-console/internal/pkg/errs"
	"admin-console/internal/usecase"
	"admin-console/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// UsersHandler serves the admin user directory. Every operation re-runs the
// full access check; the listing itself goes through the privileged
// directory query.
type UsersHandler struct {
	access    queries.AccessQueries
	directory queries.DirectoryQueries
	cfg       config.Config
}

func NewUsersHandler(access queries.AccessQueries, directory queries.DirectoryQueries, cfg config.Config) *UsersHandler {
	return &UsersHandler{
		access:    access,
		directory: directory,
		cfg:       cfg,
	}
}

// ensureAdmin authorizes the request and flushes refreshed cookies whatever
// the outcome. Returns false after writing the error response.
func (h *UsersHandler) ensureAdmin(c *gin.Context) bool {
	jar := cookie.NewGinJar(c, h.cfg.Cookie)
	accessToken, refreshToken := cookie.RequestTokens(c, jar)

	decision, refreshed, err := h.access.Check(c.Request.Context(), usecase.Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	if refreshed != nil {
		cookie.WriteSession(jar, h.cfg.Cookie, refreshed.AccessToken, refreshed.RefreshToken, refreshed.ExpiresIn)
	}
	if err != nil {
		abortWithAccessError(c, err)
		return false
	}
	if !decision.Authenticated {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.ErrUnauthenticated, "Unauthorized")
		return false
	}
	if !decision.IsAdmin {
		httperr.AbortWithError(c, http.StatusForbidden, errs.ErrForbidden, "Forbidden")
		return false
	}

	c.Set("user_id", decision.UserID)
	return true
}

func parseListParams(c *gin.Context) (page, perPage int, query string, status directory.Status, ok bool) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("perPage", "50"))
	query = c.Query("q")

	status, err := directory.ParseStatus(c.Query("status"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid status filter")
		return 0, 0, "", "", false
	}
	return page, perPage, query, status, true
}

// List handles GET /api/admin/users.
func (h *UsersHandler) List(c *gin.Context) {
	if !h.ensureAdmin(c) {
		return
	}

	page, perPage, query, status, ok := parseListParams(c)
	if !ok {
		return
	}

	result, err := h.directory.ListUsers(c.Request.Context(), page, perPage, query, status)
	if err != nil {
		abortWithAccessError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Count handles GET /api/admin/users/count.
func (h *UsersHandler) Count(c *gin.Context) {
	if !h.ensureAdmin(c) {
		return
	}

	_, _, query, status, ok := parseListParams(c)
	if !ok {
		return
	}

	total, err := h.directory.CountUsers(c.Request.Context(), query, status)
	if err != nil {
		abortWithAccessError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.CountResponse{Total: total})
}
