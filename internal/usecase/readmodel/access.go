package readmodel

// Identity is the caller resolved from session credentials. It lives for one
// request and is never persisted.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// AccessDecision is the per-request authorization outcome. Recomputed on
// every request; never cached across requests.
type AccessDecision struct {
	Authenticated bool   `json:"authenticated"`
	IsAdmin       bool   `json:"isAdmin"`
	UserID        string `json:"-"`
	Email         string `json:"email,omitempty"`
}
