package directory

import (
	"strings"
	"time"

	"admin-console/internal/pkg/errs"
)

// UserRecord mirrors a raw admin user record from the identity provider's
// bulk listing API. Timestamps stay as strings: the provider emits RFC3339
// plus the literal "forever" marker for permanent bans.
type UserRecord struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	CreatedAt        string         `json:"created_at,omitempty"`
	ConfirmedAt      string         `json:"confirmed_at,omitempty"`
	EmailConfirmedAt string         `json:"email_confirmed_at,omitempty"`
	LastSignInAt     string         `json:"last_sign_in_at,omitempty"`
	BannedUntil      string         `json:"banned_until,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	AppMetadata      map[string]any `json:"app_metadata,omitempty"`
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInvited  Status = "invited"
	StatusDisabled Status = "disabled"
)

// ParseStatus validates a status filter value. Empty means "no filter".
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case "", StatusActive, StatusInvited, StatusDisabled:
		return Status(raw), nil
	default:
		return "", errs.Mark(errs.Newf("unknown status %q", raw), errs.ErrInvalidStatusFilter)
	}
}

func bannedAt(value string, now time.Time) bool {
	if value == "" {
		return false
	}
	if value == "forever" {
		return true
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return false
	}
	return ts.After(now)
}

// DeriveStatus classifies a record: banned wins, then any confirmation or
// sign-in signal means active, otherwise the user is still invited.
func DeriveStatus(u UserRecord, now time.Time) Status {
	if bannedAt(u.BannedUntil, now) {
		return StatusDisabled
	}
	if u.EmailConfirmedAt != "" || u.ConfirmedAt != "" || u.LastSignInAt != "" {
		return StatusActive
	}
	return StatusInvited
}

func (u UserRecord) metaString(key string) string {
	if u.UserMetadata == nil {
		return ""
	}
	if v, ok := u.UserMetadata[key].(string); ok {
		return v
	}
	return ""
}

// DisplayName picks the first non-blank profile name field, in priority order.
func (u UserRecord) DisplayName() string {
	for _, key := range []string{"full_name", "name", "display_name", "username"} {
		if v := strings.TrimSpace(u.metaString(key)); v != "" {
			return u.metaString(key)
		}
	}
	return ""
}

func (u UserRecord) orgName() string {
	if v := u.metaString("org_name"); v != "" {
		return v
	}
	if org, ok := u.UserMetadata["organization"].(map[string]any); ok {
		if name, ok := org["name"].(string); ok {
			return name
		}
	}
	return ""
}

// Summary is the directory listing projection of a raw record. Status is
// computed, never stored.
type Summary struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	Status      Status `json:"status"`
	OrgName     string `json:"org_name,omitempty"`
}

func ToSummary(u UserRecord, now time.Time) Summary {
	return Summary{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		CreatedAt:   u.CreatedAt,
		Status:      DeriveStatus(u, now),
		OrgName:     u.orgName(),
	}
}
