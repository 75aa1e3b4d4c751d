//go:build unit

package identity_test

import (
	"context"
	"testing"
	"time"

	"admin-console/internal/domain/directory"
	"admin-console/internal/infra"
	"admin-console/internal/infra/identity"
	"admin-console/internal/pkg/config"
	"admin-console/tests/common/builder"
	"admin-console/tests/common/identitytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providerConfig(url string) config.IdentityConfig {
	return config.IdentityConfig{
		BackendURL: url,
		AnonKey:    "test-anon-key",
		ServiceKey: "test-service-key",
		Timeout:    5 * time.Second,
	}
}

func TestClient_Ready(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		client := identity.NewAnonClient(providerConfig("http://localhost:54321"))
		assert.NoError(t, client.Ready())
	})

	t.Run("missing backend url", func(t *testing.T) {
		client := identity.NewAnonClient(config.IdentityConfig{AnonKey: "key"})
		err := client.Ready()
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindConfig))
	})

	t.Run("missing key", func(t *testing.T) {
		client := identity.NewAnonClient(config.IdentityConfig{BackendURL: "http://localhost:54321"})
		err := client.Ready()
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindConfig))
	})

	t.Run("requests fail fast when unconfigured", func(t *testing.T) {
		client := identity.NewAnonClient(config.IdentityConfig{})
		_, err := client.GetUser(context.Background(), "token")
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindConfig))
	})
}

func TestClient_GetUser(t *testing.T) {
	ctx := context.Background()
	provider := identitytest.NewProvider()
	defer provider.Close()

	provider.AddSession("valid-token", "user-1", "user@example.com")
	client := identity.NewAnonClient(providerConfig(provider.URL()))

	t.Run("valid token", func(t *testing.T) {
		user, err := client.GetUser(ctx, "valid-token")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, "user@example.com", user.Email)
	})

	t.Run("rejected token", func(t *testing.T) {
		_, err := client.GetUser(ctx, "bogus-token")
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindUnauthorized))
	})
}

func TestClient_Grants(t *testing.T) {
	ctx := context.Background()
	provider := identitytest.NewProvider()
	defer provider.Close()

	provider.AddAccount("user-1", "user@example.com", "secret123")
	client := identity.NewAnonClient(providerConfig(provider.URL()))

	t.Run("password grant issues a session", func(t *testing.T) {
		session, err := client.PasswordGrant(ctx, "user@example.com", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		require.NotNil(t, session.User)
		assert.Equal(t, "user-1", session.User.ID)
	})

	t.Run("wrong password is unauthorized, not an upstream failure", func(t *testing.T) {
		_, err := client.PasswordGrant(ctx, "user@example.com", "wrong")
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindUnauthorized))
	})

	t.Run("refresh grant rotates the session", func(t *testing.T) {
		first, err := client.PasswordGrant(ctx, "user@example.com", "secret123")
		require.NoError(t, err)

		second, err := client.RefreshGrant(ctx, first.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, second.AccessToken)
		assert.NotEqual(t, first.AccessToken, second.AccessToken)
	})

	t.Run("dead refresh token is unauthorized", func(t *testing.T) {
		_, err := client.RefreshGrant(ctx, "dead-token")
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindUnauthorized))
	})
}

func TestClient_Logout(t *testing.T) {
	provider := identitytest.NewProvider()
	defer provider.Close()

	client := identity.NewAnonClient(providerConfig(provider.URL()))
	assert.NoError(t, client.Logout(context.Background(), "any-token"))
}

func TestClient_ListUsers(t *testing.T) {
	ctx := context.Background()

	users := make([]directory.UserRecord, 0, 5)
	for i := 0; i < 5; i++ {
		users = append(users, builder.NewUserRecordBuilder().Build())
	}

	t.Run("paginates with the total from the header", func(t *testing.T) {
		provider := identitytest.NewProvider()
		defer provider.Close()
		provider.SetDirectory(users)

		client := identity.NewServiceClient(providerConfig(provider.URL()))

		page, err := client.ListUsers(ctx, 1, 2)
		require.NoError(t, err)
		assert.Len(t, page.Users, 2)
		assert.Equal(t, 2, page.NextPage)
		require.NotNil(t, page.Total)
		assert.Equal(t, 5, *page.Total)
	})

	t.Run("last page has no cursor", func(t *testing.T) {
		provider := identitytest.NewProvider()
		defer provider.Close()
		provider.SetDirectory(users)

		client := identity.NewServiceClient(providerConfig(provider.URL()))

		page, err := client.ListUsers(ctx, 3, 2)
		require.NoError(t, err)
		assert.Len(t, page.Users, 1)
		assert.Zero(t, page.NextPage)
	})

	t.Run("missing total header leaves Total nil", func(t *testing.T) {
		provider := identitytest.NewProvider()
		defer provider.Close()
		provider.SetDirectory(users)
		provider.SendTotalHeader = false

		client := identity.NewServiceClient(providerConfig(provider.URL()))

		page, err := client.ListUsers(ctx, 1, 2)
		require.NoError(t, err)
		assert.Nil(t, page.Total)
	})

	t.Run("upstream failure", func(t *testing.T) {
		provider := identitytest.NewProvider()
		defer provider.Close()
		provider.FailListing = true

		client := identity.NewServiceClient(providerConfig(provider.URL()))

		_, err := client.ListUsers(ctx, 1, 2)
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindUpstreamFailure))
	})
}
