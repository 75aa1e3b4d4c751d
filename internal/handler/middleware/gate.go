package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"admin-console/internal/pkg/config"
	"admin-console/internal/pkg/cookie"
	"admin-console/internal/usecase"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserIDKey = "user_id"
	ctxEmailKey  = "user_email"

	adminCheckPath = "/api/qa/admin-check"
)

// AccessGate guards every protected page. It resolves the session, then
// confirms admin status through the same status endpoint the UI consults,
// so both can never disagree. Denials redirect to the login surface;
// refreshed session cookies reach the response on every path.
type AccessGate struct {
	resolver   usecase.SessionResolver
	cfg        config.Config
	httpClient *http.Client
}

func NewAccessGate(resolver usecase.SessionResolver, cfg config.Config) *AccessGate {
	return &AccessGate{
		resolver: resolver,
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: cfg.Gate.Timeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (g *AccessGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if g.isPublic(path) {
			c.Next()
			return
		}

		jar := cookie.NewGinJar(c, g.cfg.Cookie)
		accessToken, refreshToken := cookie.RequestTokens(c, jar)

		res, err := g.resolver.Resolve(c.Request.Context(), usecase.Credentials{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		})
		if err != nil {
			slog.Error("session resolution failed at gate", "error", err.Error(), "path", path)
			g.redirectToLogin(c, url.Values{"next": {path}})
			return
		}

		if res.Refreshed != nil {
			cookie.WriteSession(jar, g.cfg.Cookie, res.Refreshed.AccessToken, res.Refreshed.RefreshToken, res.Refreshed.ExpiresIn)
		}

		if res.Identity == nil {
			g.redirectToLogin(c, url.Values{"next": {path}})
			return
		}

		isAdmin, unauthenticated := g.adminCheck(c, jar)
		if unauthenticated {
			g.redirectToLogin(c, url.Values{"next": {path}})
			return
		}
		if !isAdmin {
			g.redirectToLogin(c, url.Values{"error": {"access_denied"}})
			return
		}

		c.Set(ctxUserIDKey, res.Identity.ID)
		c.Set(ctxEmailKey, res.Identity.Email)
		c.Next()
	}
}

func (g *AccessGate) isPublic(path string) bool {
	for _, prefix := range g.cfg.Gate.PublicPaths {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// adminCheck performs the loopback status call, forwarding request cookies
// merged with any refresh performed during resolution. Every failure mode
// counts as "not admin" - the gate fails closed.
func (g *AccessGate) adminCheck(c *gin.Context, jar *cookie.GinJar) (isAdmin bool, unauthenticated bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("admin check panicked", "panic", r)
			isAdmin = false
			unauthenticated = false
		}
	}()

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, g.statusURL(c), nil)
	if err != nil {
		return false, false
	}
	req.Header.Set("Accept", "application/json")
	if header := cookie.MergeCookieHeader(jar.ReadAll(), jar.Pending()); header != "" {
		req.Header.Set("Cookie", header)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		slog.Error("admin check request failed", "error", err.Error())
		return false, false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return false, true
	}
	if resp.StatusCode != http.StatusOK {
		return false, false
	}

	var payload struct {
		IsPlatformAdmin bool `json:"isPlatformAdmin"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return false, false
	}
	return payload.IsPlatformAdmin, false
}

func (g *AccessGate) statusURL(c *gin.Context) string {
	base := g.cfg.Gate.StatusURL
	if base == "" {
		base = "http://127.0.0.1:" + g.cfg.Server.Port
	}
	return strings.TrimSuffix(base, "/") + adminCheckPath
}

// redirectToLogin sends the caller to the login surface with the denial
// reason. Cookies written during resolution are already on the response.
func (g *AccessGate) redirectToLogin(c *gin.Context, params url.Values) {
	loginURL := "/login"
	if encoded := params.Encode(); encoded != "" {
		loginURL += "?" + encoded
	}
	c.Redirect(http.StatusFound, loginURL)
	c.Abort()
}

// GetUserID returns the gate-resolved user id from context.
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}
