//go:build unit || e2e

package builder

import (
	"time"

	"admin-console/internal/domain/directory"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type UserRecordBuilder struct {
	ID               string
	Email            string
	CreatedAt        string
	ConfirmedAt      string
	EmailConfirmedAt string
	LastSignInAt     string
	BannedUntil      string
	UserMetadata     map[string]any
	AppMetadata      map[string]any
}

func NewUserRecordBuilder() *UserRecordBuilder {
	now := time.Now().UTC().Format(time.RFC3339)
	return &UserRecordBuilder{
		ID:               uuid.New().String(),
		Email:            "test@example.com",
		CreatedAt:        now,
		EmailConfirmedAt: now,
		LastSignInAt:     now,
		UserMetadata:     map[string]any{"full_name": "Test User"},
	}
}

func (b *UserRecordBuilder) With(mutate func(*UserRecordBuilder)) *UserRecordBuilder {
	mutate(b)
	return b
}

// Build produces an independent record: metadata maps are deep-copied so
// mutating the builder afterwards cannot leak into already-built records.
func (b *UserRecordBuilder) Build() directory.UserRecord {
	rec := directory.UserRecord{
		ID:               b.ID,
		Email:            b.Email,
		CreatedAt:        b.CreatedAt,
		ConfirmedAt:      b.ConfirmedAt,
		EmailConfirmedAt: b.EmailConfirmedAt,
		LastSignInAt:     b.LastSignInAt,
		BannedUntil:      b.BannedUntil,
	}
	if b.UserMetadata != nil {
		rec.UserMetadata = map[string]any{}
		_ = copier.CopyWithOption(&rec.UserMetadata, b.UserMetadata, copier.Option{DeepCopy: true})
	}
	if b.AppMetadata != nil {
		rec.AppMetadata = map[string]any{}
		_ = copier.CopyWithOption(&rec.AppMetadata, b.AppMetadata, copier.Option{DeepCopy: true})
	}
	return rec
}

// Fluent builder methods
func (b *UserRecordBuilder) WithID(id string) *UserRecordBuilder {
	b.ID = id
	return b
}

func (b *UserRecordBuilder) WithEmail(email string) *UserRecordBuilder {
	b.Email = email
	return b
}

func (b *UserRecordBuilder) WithFullName(name string) *UserRecordBuilder {
	if b.UserMetadata == nil {
		b.UserMetadata = map[string]any{}
	}
	b.UserMetadata["full_name"] = name
	return b
}

func (b *UserRecordBuilder) WithOrgName(name string) *UserRecordBuilder {
	if b.UserMetadata == nil {
		b.UserMetadata = map[string]any{}
	}
	b.UserMetadata["org_name"] = name
	return b
}

func (b *UserRecordBuilder) AsInvited() *UserRecordBuilder {
	b.ConfirmedAt = ""
	b.EmailConfirmedAt = ""
	b.LastSignInAt = ""
	b.BannedUntil = ""
	return b
}

func (b *UserRecordBuilder) AsBannedForever() *UserRecordBuilder {
	b.BannedUntil = "forever"
	return b
}

func (b *UserRecordBuilder) AsBannedUntil(ts time.Time) *UserRecordBuilder {
	b.BannedUntil = ts.UTC().Format(time.RFC3339)
	return b
}
