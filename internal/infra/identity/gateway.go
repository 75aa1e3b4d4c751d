package identity

import (
	"context"

	"admin-console/internal/usecase"
	"admin-console/internal/usecase/queries"
)

// Gateway adapts the anon-key client to the session port.
type Gateway struct {
	client *Client
}

func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) Ready() error {
	return g.client.Ready()
}

func (g *Gateway) GetUser(ctx context.Context, accessToken string) (*usecase.ProviderUser, error) {
	user, err := g.client.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &usecase.ProviderUser{ID: user.ID, Email: user.Email}, nil
}

func (g *Gateway) RefreshSession(ctx context.Context, refreshToken string) (*usecase.Session, error) {
	session, err := g.client.RefreshGrant(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return toUsecaseSession(session), nil
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (*usecase.Session, *usecase.ProviderUser, error) {
	session, err := g.client.PasswordGrant(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	var user *usecase.ProviderUser
	if session.User != nil {
		user = &usecase.ProviderUser{ID: session.User.ID, Email: session.User.Email}
	}
	return toUsecaseSession(session), user, nil
}

func (g *Gateway) SignOut(ctx context.Context, accessToken string) error {
	return g.client.Logout(ctx, accessToken)
}

func toUsecaseSession(session *Session) *usecase.Session {
	return &usecase.Session{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
	}
}

// AdminGateway adapts the service-key client to the directory listing port.
type AdminGateway struct {
	client *Client
}

func NewAdminGateway(client *Client) *AdminGateway {
	return &AdminGateway{client: client}
}

func (g *AdminGateway) ListUsers(ctx context.Context, page, perPage int) (*queries.ListedPage, error) {
	result, err := g.client.ListUsers(ctx, page, perPage)
	if err != nil {
		return nil, err
	}
	return &queries.ListedPage{
		Users:    result.Users,
		NextPage: result.NextPage,
		Total:    result.Total,
	}, nil
}
