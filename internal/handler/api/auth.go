package api

import (
	"html/template"
	"log/slog"
	"net/http"

	reqdto "admin-console/internal/handler/dto/request"
	resdto "admin-console/internal/handler/dto/response"
	"admin-console/internal/handler/httperr"
	"admin-console/internal/infra"
	"admin-console/internal/pkg/config"
	"admin-console/internal/pkg/cookie"
	"admin-console/internal/pkg/errs"
	"admin-console/internal/usecase"

	"github.com/gin-gonic/gin"
)

// AuthHandler proxies the session lifecycle to the identity provider and
// owns the login surface the gate redirects to.
type AuthHandler struct {
	gateway usecase.IdentityGateway
	cfg     config.Config
}

func NewAuthHandler(gateway usecase.IdentityGateway, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		gateway: gateway,
		cfg:     cfg,
	}
}

// Login handles POST /api/auth/login: password grant against the provider,
// session stored in cookies on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format")
		return
	}

	session, user, err := h.gateway.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindUnauthorized):
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid email or password")
		case infra.IsKind(err, infra.KindConfig):
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Server configuration error")
		default:
			slog.Error("login failed", "error", err.Error())
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Server error")
		}
		return
	}

	jar := cookie.NewGinJar(c, h.cfg.Cookie)
	cookie.WriteSession(jar, h.cfg.Cookie, session.AccessToken, session.RefreshToken, session.ExpiresIn)

	email := req.Email
	if user != nil && user.Email != "" {
		email = user.Email
	}
	c.JSON(http.StatusOK, resdto.LoginResponse{Email: email})
}

// Logout handles POST /api/auth/logout. Provider revocation is best effort;
// the cookies are cleared regardless.
func (h *AuthHandler) Logout(c *gin.Context) {
	jar := cookie.NewGinJar(c, h.cfg.Cookie)
	accessToken, _ := cookie.RequestTokens(c, jar)

	if accessToken != "" {
		if err := h.gateway.SignOut(c.Request.Context(), accessToken); err != nil {
			slog.Warn("provider logout failed", "error", err.Error())
		}
	}

	cookie.ClearSession(jar, h.cfg.Cookie)
	c.Status(http.StatusNoContent)
}

var loginPageTmpl = template.Must(template.New("login").Parse(`<!doctype html>
<html>
<head><title>Sign in</title></head>
<body>
<h1>Sign in</h1>
{{if eq .Error "access_denied"}}<p>Access denied: this account is not a platform admin.</p>{{end}}
<form method="post" action="/api/auth/login">
<input type="email" name="email" placeholder="Email" autocomplete="username">
<input type="password" name="password" placeholder="Password" autocomplete="current-password">
<button type="submit">Sign in</button>
</form>
</body>
</html>
`))

// LoginPage handles GET /login, the redirect target of the access gate. The
// markup is intentionally minimal; the dashboard UI lives elsewhere.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := loginPageTmpl.Execute(c.Writer, gin.H{
		"Error": c.Query("error"),
		"Next":  c.Query("next"),
	})
	if err != nil {
		_ = c.Error(errs.Wrap(err, "failed to render login page"))
	}
}
