// Package client provides the consumer-side admin gate used by UI shells
// and tools that sit in front of the console API.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type State int

const (
	StatePending State = iota
	StateReady
)

// Decision is the resolved gate outcome. The zero value is "not admin",
// which is also what every failure mode resolves to.
type Decision struct {
	IsAdmin bool
	Email   string
}

type Options struct {
	// BaseURL of the console, e.g. "https://console.example.com".
	BaseURL string
	// HTTPClient carries the session (cookie jar or transport); defaults to
	// a plain client with a short timeout.
	HTTPClient *http.Client
	// AccessToken, when set, is sent as a Bearer header for cookie-less
	// callers.
	AccessToken string
	// RedirectToLogin forwards not-admin outcomes to the login surface via
	// Redirect. Some call sites render a passive denial instead.
	RedirectToLogin bool
	Redirect        func(loginURL string)
}

// Gate blocks protected views until the status endpoint has answered.
// Resolve runs the check exactly once; afterwards the gate is Ready and
// every caller sees the same decision.
type Gate struct {
	opts Options

	mu       sync.Mutex
	once     sync.Once
	state    State
	decision Decision
}

func NewGate(opts Options) *Gate {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Gate{opts: opts, state: StatePending}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Decision returns the outcome once resolved; ok is false while pending.
func (g *Gate) Decision() (Decision, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision, g.state == StateReady
}

// Resolve performs the status check on first call and returns the decision.
// It never leaves the gate pending: network errors, non-2xx responses and
// malformed payloads all resolve to ready(not admin).
func (g *Gate) Resolve(ctx context.Context) Decision {
	g.once.Do(func() {
		decision := g.fetch(ctx)

		g.mu.Lock()
		g.decision = decision
		g.state = StateReady
		g.mu.Unlock()

		if !decision.IsAdmin && g.opts.RedirectToLogin && g.opts.Redirect != nil {
			g.opts.Redirect("/login?error=access_denied")
		}
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

func (g *Gate) fetch(ctx context.Context) Decision {
	url := strings.TrimSuffix(g.opts.BaseURL, "/") + "/api/qa/admin-check"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Decision{}
	}
	req.Header.Set("Accept", "application/json")
	if g.opts.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.opts.AccessToken)
	}

	resp, err := g.opts.HTTPClient.Do(req)
	if err != nil {
		return Decision{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Decision{}
	}

	var payload struct {
		IsPlatformAdmin bool    `json:"isPlatformAdmin"`
		Email           *string `json:"email"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return Decision{}
	}

	decision := Decision{IsAdmin: payload.IsPlatformAdmin}
	if payload.Email != nil {
		decision.Email = *payload.Email
	}
	return decision
}
