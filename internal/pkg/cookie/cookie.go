package cookie

import (
	"net/http"
	"sort"
	"strings"

	"admin-console/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookieName  = "sb-access-token"
	RefreshTokenCookieName = "sb-refresh-token"
)

type Pair struct {
	Name  string
	Value string
}

type Options struct {
	MaxAge   int
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

type SetPair struct {
	Name    string
	Value   string
	Options Options
}

// Jar is the single credential capability injected into every request-scoped
// operation that reads or refreshes session cookies. There is exactly one
// implementation per transport; nothing else touches Set-Cookie directly.
type Jar interface {
	ReadAll() []Pair
	WriteAll(pairs []SetPair)
}

// GinJar adapts a gin request/response pair. Writes go onto the outgoing
// response immediately and are also buffered so they can be merged into
// loopback requests and replayed onto redirects.
type GinJar struct {
	c       *gin.Context
	cfg     config.CookieConfig
	pending []SetPair
}

func NewGinJar(c *gin.Context, cfg config.CookieConfig) *GinJar {
	return &GinJar{c: c, cfg: cfg}
}

func (j *GinJar) ReadAll() []Pair {
	raw := j.c.Request.Cookies()
	pairs := make([]Pair, 0, len(raw))
	for _, ck := range raw {
		pairs = append(pairs, Pair{Name: ck.Name, Value: ck.Value})
	}
	return pairs
}

func (j *GinJar) WriteAll(pairs []SetPair) {
	for _, p := range pairs {
		j.c.SetSameSite(p.Options.SameSite)
		j.c.SetCookie(p.Name, p.Value, p.Options.MaxAge, p.Options.Path, p.Options.Domain, p.Options.Secure, p.Options.HTTPOnly)
	}
	j.pending = append(j.pending, pairs...)
}

// Pending returns the writes buffered during this request.
func (j *GinJar) Pending() []SetPair {
	return j.pending
}

// Get returns the value of a single cookie, or "".
func Get(j Jar, name string) string {
	for _, p := range j.ReadAll() {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// RequestTokens extracts the session credentials for a request. The access
// token cookie wins; a Bearer Authorization header is the fallback for
// cookie-less API callers.
func RequestTokens(c *gin.Context, j Jar) (accessToken, refreshToken string) {
	accessToken = Get(j, AccessTokenCookieName)
	refreshToken = Get(j, RefreshTokenCookieName)

	if accessToken == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimSpace(authHeader[len("Bearer "):])
		}
	}
	return accessToken, refreshToken
}

func sessionOptions(cfg config.CookieConfig, maxAge int) Options {
	return Options{
		MaxAge:   maxAge,
		Path:     "/",
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HTTPOnly: true,
		SameSite: parseSameSite(cfg.SameSite),
	}
}

// WriteSession stores a (possibly refreshed) provider session on the response.
func WriteSession(j Jar, cfg config.CookieConfig, accessToken, refreshToken string, expiresIn int) {
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	pairs := []SetPair{
		{Name: AccessTokenCookieName, Value: accessToken, Options: sessionOptions(cfg, expiresIn)},
	}
	if refreshToken != "" {
		// Refresh tokens outlive the access token by design of the provider.
		pairs = append(pairs, SetPair{Name: RefreshTokenCookieName, Value: refreshToken, Options: sessionOptions(cfg, 30*24*3600)})
	}
	j.WriteAll(pairs)
}

func ClearSession(j Jar, cfg config.CookieConfig) {
	j.WriteAll([]SetPair{
		{Name: AccessTokenCookieName, Value: "", Options: sessionOptions(cfg, -1)},
		{Name: RefreshTokenCookieName, Value: "", Options: sessionOptions(cfg, -1)},
	})
}

// MergeCookieHeader combines request cookies with buffered writes into a
// Cookie header value, later writes overriding earlier values. Used when
// forwarding credentials on a same-origin loopback call.
func MergeCookieHeader(reqCookies []Pair, pending []SetPair) string {
	combined := make(map[string]string, len(reqCookies)+len(pending))
	for _, p := range reqCookies {
		combined[p.Name] = p.Value
	}
	for _, p := range pending {
		combined[p.Name] = p.Value
	}

	names := make([]string, 0, len(combined))
	for name := range combined {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if combined[name] == "" {
			continue
		}
		parts = append(parts, name+"="+combined[name])
	}
	return strings.Join(parts, "; ")
}

func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "Lax":
		return http.SameSiteLaxMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
