//go:build unit || e2e

// Package identitytest runs an in-process stand-in for the hosted identity
// provider: session lookup, token grants and the paginated admin listing.
package identitytest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"admin-console/internal/domain/directory"
)

type account struct {
	ID       string
	Email    string
	Password string
}

type Provider struct {
	srv *httptest.Server

	mu            sync.Mutex
	accounts      map[string]account // keyed by email
	sessions      map[string]account // access token -> account
	refreshTokens map[string]account // refresh token -> account
	users         []directory.UserRecord

	// SendTotalHeader controls the X-Total-Count header on the listing.
	SendTotalHeader bool
	// FailListing makes the admin listing answer 502.
	FailListing bool
}

func NewProvider() *Provider {
	p := &Provider{
		accounts:        map[string]account{},
		sessions:        map[string]account{},
		refreshTokens:   map[string]account{},
		SendTotalHeader: true,
	}
	p.srv = httptest.NewServer(http.HandlerFunc(p.handle))
	return p
}

func (p *Provider) URL() string { return p.srv.URL }
func (p *Provider) Close()      { p.srv.Close() }

// AddAccount registers a password-grant account and returns its id.
func (p *Provider) AddAccount(id, email, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[email] = account{ID: id, Email: email, Password: password}
}

// AddSession registers an already-valid access token.
func (p *Provider) AddSession(accessToken, id, email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[accessToken] = account{ID: id, Email: email}
}

// AddRefreshToken registers a refresh token that mints sessions for the user.
func (p *Provider) AddRefreshToken(refreshToken, id, email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshTokens[refreshToken] = account{ID: id, Email: email}
}

// SetDirectory replaces the records served by the admin listing.
func (p *Provider) SetDirectory(users []directory.UserRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = users
}

func randomToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (p *Provider) issueSession(w http.ResponseWriter, acct account) {
	accessToken := randomToken()
	refreshToken := randomToken()

	p.mu.Lock()
	p.sessions[accessToken] = acct
	p.refreshTokens[refreshToken] = acct
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  accessToken,
		"token_type":    "bearer",
		"expires_in":    3600,
		"refresh_token": refreshToken,
		"user":          map[string]string{"id": acct.ID, "email": acct.Email},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (p *Provider) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "missing apikey"})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/user":
		p.handleGetUser(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/token":
		p.handleToken(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/logout":
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/admin/users":
		p.handleListUsers(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "not found"})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	return strings.TrimPrefix(header, "Bearer ")
}

func (p *Provider) handleGetUser(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	acct, ok := p.sessions[bearerToken(r)]
	p.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": acct.ID, "email": acct.Email})
}

func (p *Provider) handleToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid body"})
		return
	}

	switch r.URL.Query().Get("grant_type") {
	case "password":
		p.mu.Lock()
		acct, ok := p.accounts[body.Email]
		p.mu.Unlock()
		if !ok || acct.Password != body.Password {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid credentials"})
			return
		}
		p.issueSession(w, acct)
	case "refresh_token":
		p.mu.Lock()
		acct, ok := p.refreshTokens[body.RefreshToken]
		p.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid refresh token"})
			return
		}
		p.issueSession(w, acct)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "unsupported grant type"})
	}
}

func (p *Provider) handleListUsers(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	failListing := p.FailListing
	sendTotal := p.SendTotalHeader
	users := make([]directory.UserRecord, len(p.users))
	copy(users, p.users)
	p.mu.Unlock()

	if failListing {
		writeJSON(w, http.StatusBadGateway, map[string]string{"msg": "listing unavailable"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}

	start := (page - 1) * perPage
	if start > len(users) {
		start = len(users)
	}
	end := start + perPage
	if end > len(users) {
		end = len(users)
	}

	body := map[string]any{"users": users[start:end]}
	if end < len(users) {
		body["nextPage"] = page + 1
	}

	if sendTotal {
		w.Header().Set("X-Total-Count", strconv.Itoa(len(users)))
	}
	writeJSON(w, http.StatusOK, body)
}
