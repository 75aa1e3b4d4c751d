package directory

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold canonically decomposes, strips combining marks and lowercases, so
// that "José" and "jose" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func (u UserRecord) searchFields() []string {
	fields := []string{u.Email}
	for _, key := range []string{"full_name", "name", "display_name", "username", "org_name"} {
		fields = append(fields, u.metaString(key))
	}

	if org, ok := u.UserMetadata["organization"].(map[string]any); ok {
		if name, ok := org["name"].(string); ok {
			fields = append(fields, name)
		}
	}
	if orgs, ok := u.UserMetadata["organizations"].([]any); ok {
		for _, entry := range orgs {
			if m, ok := entry.(map[string]any); ok {
				if name, ok := m["name"].(string); ok {
					fields = append(fields, name)
				}
			}
		}
	}
	return fields
}

// MatchesQuery reports whether any searchable field contains the query,
// case- and diacritic-insensitively. An empty query matches everything.
func MatchesQuery(u UserRecord, query string) bool {
	if query == "" {
		return true
	}
	needle := Fold(query)
	for _, field := range u.searchFields() {
		if field == "" {
			continue
		}
		if strings.Contains(Fold(field), needle) {
			return true
		}
	}
	return false
}

// Filter applies the status filter and search query in memory.
func Filter(users []UserRecord, query string, status Status, now time.Time) []UserRecord {
	query = strings.TrimSpace(query)

	out := make([]UserRecord, 0, len(users))
	for _, u := range users {
		if status != "" && DeriveStatus(u, now) != status {
			continue
		}
		if !MatchesQuery(u, query) {
			continue
		}
		out = append(out, u)
	}
	return out
}
