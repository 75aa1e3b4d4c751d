package usecase

import (
	"context"
	"strings"

	"admin-console/internal/pkg/config"
	"admin-console/internal/pkg/errs"
	"admin-console/internal/usecase/readmodel"

	"github.com/google/uuid"
)

// AdminPolicy describes which admin checks are active. Resolved once at
// startup and consumed uniformly by every call site, so endpoints cannot
// drift apart on how "admin" is decided.
type AdminPolicy struct {
	allowList       map[string]struct{}
	checkMembership bool
}

const (
	PolicyAllowListOnly          = "allow_list_only"
	PolicyAllowListAndMembership = "allow_list_and_membership"
)

func NewAdminPolicy(cfg config.AdminConfig) (AdminPolicy, error) {
	allowList := make(map[string]struct{})
	for _, email := range cfg.NormalizedAdminEmails() {
		allowList[email] = struct{}{}
	}

	switch cfg.Policy {
	case PolicyAllowListOnly:
		return AdminPolicy{allowList: allowList}, nil
	case PolicyAllowListAndMembership:
		return AdminPolicy{allowList: allowList, checkMembership: true}, nil
	default:
		return AdminPolicy{}, errs.Newf("unknown admin policy %q", cfg.Policy)
	}
}

// Allows reports whether the email is on the static allow-list.
func (p AdminPolicy) Allows(email string) bool {
	if email == "" {
		return false
	}
	_, ok := p.allowList[strings.ToLower(email)]
	return ok
}

func (p AdminPolicy) ChecksMembership() bool {
	return p.checkMembership
}

// MembershipStore checks for an admin-membership row.
type MembershipStore interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AdminClassifier decides platform-admin status for a resolved identity.
type AdminClassifier interface {
	IsAdmin(ctx context.Context, ident readmodel.Identity) (bool, error)
}

type adminClassifierImpl struct {
	policy      AdminPolicy
	memberships MembershipStore
}

func NewAdminClassifier(policy AdminPolicy, memberships MembershipStore) AdminClassifier {
	return &adminClassifierImpl{
		policy:      policy,
		memberships: memberships,
	}
}

// IsAdmin checks the allow-list first: it is dependency-free, short-circuits
// the membership lookup and keeps working when the store is unreachable.
// Lookup failures propagate as errors, never as "admin" and never as a
// silent "not admin".
func (c *adminClassifierImpl) IsAdmin(ctx context.Context, ident readmodel.Identity) (bool, error) {
	if c.policy.Allows(ident.Email) {
		return true, nil
	}

	if !c.policy.ChecksMembership() {
		return false, nil
	}

	if c.memberships == nil {
		return false, errs.Mark(errs.New("membership store not configured"), errs.ErrServerConfiguration)
	}

	userID, err := uuid.Parse(ident.ID)
	if err != nil {
		// Membership rows are keyed by UUID; a non-UUID id cannot have one.
		return false, nil
	}

	exists, err := c.memberships.Exists(ctx, userID)
	if err != nil {
		return false, errs.Mark(err, errs.ErrMembershipLookup)
	}
	return exists, nil
}
