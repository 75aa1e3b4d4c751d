package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"admin-console/internal/domain/directory"
	"admin-console/internal/infra"
	"admin-console/internal/pkg/config"
	"admin-console/internal/pkg/errs"
)

// User is the identity resolved for one request. Not persisted here.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a provider-issued credential pair.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// UserPage is one page of the provider's bulk user listing.
type UserPage struct {
	Users    []directory.UserRecord `json:"users"`
	NextPage int                    `json:"nextPage"` // 0 = no further page
	Total    *int                   `json:"total,omitempty"`
}

// Client talks to the hosted identity provider. Anon-key clients resolve and
// refresh sessions; the service-key client additionally reaches the admin
// user listing. Constructed once by the composition root and passed in.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newClient(cfg config.IdentityConfig, apiKey string) *Client {
	return &Client{
		baseURL: cfg.BackendURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// NewAnonClient builds the session-scoped client (resolution, token grants).
func NewAnonClient(cfg config.IdentityConfig) *Client {
	return newClient(cfg, cfg.AnonKey)
}

// NewServiceClient builds the privileged client for the admin listing API.
func NewServiceClient(cfg config.IdentityConfig) *Client {
	return newClient(cfg, cfg.ServiceKey)
}

// Ready reports whether the client has the configuration it needs. Callers
// must check it before issuing requests so that a misconfigured deployment
// surfaces as a server configuration error, not as "unauthenticated".
func (c *Client) Ready() error {
	if c.baseURL == "" || c.apiKey == "" {
		return infra.WrapInfraErr("identity provider not configured", errs.ErrServerConfiguration, infra.KindConfig)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, bearer string) (*http.Response, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, infra.WrapInfraErr("failed to encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, infra.WrapInfraErr("failed to build provider request", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, infra.WrapInfraErr("identity provider unreachable", err)
	}
	return resp, nil
}

func decodeInto(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return infra.WrapInfraErr("failed to decode provider response", err)
	}
	return nil
}

// credentialError covers the grant endpoints, where the provider answers
// 400 for bad credentials. Those are authorization failures, not upstream
// breakage.
func credentialError(resp *http.Response, msg string) error {
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return infra.WrapInfraErr(
		fmt.Sprintf("%s: status %d: %s", msg, resp.StatusCode, string(snippet)),
		errs.ErrIdentityProvider,
		infra.KindUnauthorized,
	)
}

func drainError(resp *http.Response, msg string) error {
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	kind := infra.KindUpstreamFailure
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = infra.KindUnauthorized
	}
	return infra.WrapInfraErr(
		fmt.Sprintf("%s: status %d: %s", msg, resp.StatusCode, string(snippet)),
		errs.ErrIdentityProvider,
		kind,
	)
}

// GetUser resolves the identity behind an access token. A 401/403 comes back
// as a KindUnauthorized error; the caller treats that as "no session".
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, accessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, drainError(resp, "get user failed")
	}

	var user User
	if err := decodeInto(resp, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, infra.WrapInfraErr("provider returned user without id", errs.ErrIdentityProvider)
	}
	return &user, nil
}

// PasswordGrant exchanges email/password credentials for a session.
func (c *Client) PasswordGrant(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	resp, err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, body, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, credentialError(resp, "invalid credentials")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, drainError(resp, "password grant failed")
	}

	var session Session
	if err := decodeInto(resp, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RefreshGrant exchanges a refresh token for a fresh session.
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*Session, error) {
	query := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}

	resp, err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, body, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, credentialError(resp, "refresh token rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, drainError(resp, "refresh grant failed")
	}

	var session Session
	if err := decodeInto(resp, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout revokes the session at the provider. Best effort: callers clear
// cookies regardless.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, accessToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return drainError(resp, "logout failed")
	}
	return nil
}

// ListUsers fetches one page of the admin user listing. Requires the
// service-key client.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) (*UserPage, error) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}

	resp, err := c.do(ctx, http.MethodGet, "/auth/v1/admin/users", query, nil, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, drainError(resp, "list users failed")
	}

	totalHeader := resp.Header.Get("X-Total-Count")

	var result UserPage
	if err := decodeInto(resp, &result); err != nil {
		return nil, err
	}

	if result.Total == nil && totalHeader != "" {
		if total, err := strconv.Atoi(totalHeader); err == nil {
			result.Total = &total
		}
	}
	return &result, nil
}
