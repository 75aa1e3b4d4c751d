package usecase

import (
	"context"

	"admin-console/internal/infra"
	"admin-console/internal/pkg/identity"
	"admin-console/internal/pkg/clock"
	"admin-console/internal/usecase/readmodel"
)

// Credentials are the inbound session tokens extracted from the request.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Session is a provider-issued credential pair the caller must write back
// onto the response when non-nil.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// ProviderUser is the identity record the provider returns for a session.
type ProviderUser struct {
	ID    string
	Email string
}

// IdentityGateway is the session-scoped slice of the identity provider.
type IdentityGateway interface {
	Ready() error
	GetUser(ctx context.Context, accessToken string) (*ProviderUser, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, *ProviderUser, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Resolution is the outcome of resolving request credentials. A nil Identity
// means "no valid session", which is a normal negative result, not an error.
// Refreshed, when set, must be flushed onto the response on every path.
type Resolution struct {
	Identity  *readmodel.Identity
	Refreshed *Session
}

type SessionResolver interface {
	Resolve(ctx context.Context, creds Credentials) (*Resolution, error)
}

type sessionResolverImpl struct {
	gateway IdentityGateway
	clock   clock.Clock
}

func NewSessionResolver(gateway IdentityGateway, clk clock.Clock) SessionResolver {
	return &sessionResolverImpl{
		gateway: gateway,
		clock:   clk,
	}
}

// Resolve turns inbound credentials into an identity. An expired access
// token is refreshed first when a refresh token is present; a token the
// provider rejects gets one refresh attempt before the session counts as
// gone. Configuration and transport failures surface as errors so callers
// answer 500, never "unauthenticated".
func (r *sessionResolverImpl) Resolve(ctx context.Context, creds Credentials) (*Resolution, error) {
	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return &Resolution{}, nil
	}

	if err := r.gateway.Ready(); err != nil {
		return nil, err
	}

	accessToken := creds.AccessToken
	var refreshed *Session

	needsRefresh := accessToken == "" || identity.TokenExpired(accessToken, r.clock.Now())
	if needsRefresh {
		if creds.RefreshToken == "" {
			if accessToken == "" {
				return &Resolution{}, nil
			}
			// Expired with nothing to refresh from; let the provider decide.
		} else {
			session, err := r.refresh(ctx, creds.RefreshToken)
			if err != nil {
				return nil, err
			}
			if session == nil {
				return &Resolution{}, nil
			}
			accessToken = session.AccessToken
			refreshed = session
		}
	}

	user, err := r.gateway.GetUser(ctx, accessToken)
	if err != nil {
		if !infra.IsKind(err, infra.KindUnauthorized) {
			return nil, err
		}

		// Rejected token: one refresh attempt, then give up.
		if refreshed != nil || creds.RefreshToken == "" {
			return &Resolution{Refreshed: refreshed}, nil
		}
		session, err := r.refresh(ctx, creds.RefreshToken)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return &Resolution{}, nil
		}
		refreshed = session

		user, err = r.gateway.GetUser(ctx, session.AccessToken)
		if err != nil {
			if infra.IsKind(err, infra.KindUnauthorized) {
				return &Resolution{Refreshed: refreshed}, nil
			}
			return nil, err
		}
		return &Resolution{
			Identity:  &readmodel.Identity{ID: user.ID, Email: user.Email},
			Refreshed: refreshed,
		}, nil
	}

	return &Resolution{
		Identity:  &readmodel.Identity{ID: user.ID, Email: user.Email},
		Refreshed: refreshed,
	}, nil
}

// refresh exchanges the refresh token. A rejected token comes back as
// (nil, nil): the session is simply gone.
func (r *sessionResolverImpl) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	session, err := r.gateway.RefreshSession(ctx, refreshToken)
	if err != nil {
		if infra.IsKind(err, infra.KindUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}
