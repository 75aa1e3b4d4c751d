//go:build unit

package queries_test

import (
	"context"
	"errors"
	"testing"

	"admin-console/internal/usecase"
	"admin-console/internal/usecase/queries"
	"admin-console/internal/usecase/readmodel"
	usecasemock "admin-console/tests/mock/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAccessQueries_Check(t *testing.T) {
	ctx := context.Background()
	creds := usecase.Credentials{AccessToken: "token"}
	ident := readmodel.Identity{ID: "user-1", Email: "user@example.com"}
	refreshed := &usecase.Session{AccessToken: "fresh", RefreshToken: "fresh-refresh"}

	t.Run("admin decision carries identity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		resolver := usecasemock.NewMockSessionResolver(ctrl)
		classifier := usecasemock.NewMockAdminClassifier(ctrl)
		resolver.EXPECT().Resolve(ctx, creds).Return(&usecase.Resolution{Identity: &ident}, nil)
		classifier.EXPECT().IsAdmin(ctx, ident).Return(true, nil)

		decision, session, err := queries.NewAccessQueries(resolver, classifier).Check(ctx, creds)
		require.NoError(t, err)
		assert.Nil(t, session)
		assert.Equal(t, &readmodel.AccessDecision{
			Authenticated: true,
			IsAdmin:       true,
			UserID:        "user-1",
			Email:         "user@example.com",
		}, decision)
	})

	t.Run("no session yields the empty decision", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		resolver := usecasemock.NewMockSessionResolver(ctrl)
		classifier := usecasemock.NewMockAdminClassifier(ctrl)
		resolver.EXPECT().Resolve(ctx, creds).Return(&usecase.Resolution{Refreshed: refreshed}, nil)

		decision, session, err := queries.NewAccessQueries(resolver, classifier).Check(ctx, creds)
		require.NoError(t, err)
		assert.False(t, decision.Authenticated)
		assert.False(t, decision.IsAdmin)
		// A refresh that happened before the session died still reaches the response.
		assert.Equal(t, refreshed, session)
	})

	t.Run("resolver failure aborts before classification", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		resolver := usecasemock.NewMockSessionResolver(ctrl)
		classifier := usecasemock.NewMockAdminClassifier(ctrl)
		resolver.EXPECT().Resolve(ctx, creds).Return(nil, errors.New("provider down"))

		decision, session, err := queries.NewAccessQueries(resolver, classifier).Check(ctx, creds)
		require.Error(t, err)
		assert.Nil(t, decision)
		assert.Nil(t, session)
	})

	t.Run("classifier failure still surfaces the refreshed session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		resolver := usecasemock.NewMockSessionResolver(ctrl)
		classifier := usecasemock.NewMockAdminClassifier(ctrl)
		resolver.EXPECT().Resolve(ctx, creds).Return(&usecase.Resolution{Identity: &ident, Refreshed: refreshed}, nil)
		classifier.EXPECT().IsAdmin(ctx, ident).Return(false, errors.New("membership lookup failed"))

		decision, session, err := queries.NewAccessQueries(resolver, classifier).Check(ctx, creds)
		require.Error(t, err)
		assert.Nil(t, decision)
		assert.Equal(t, refreshed, session)
	})

	t.Run("authenticated non-admin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		resolver := usecasemock.NewMockSessionResolver(ctrl)
		classifier := usecasemock.NewMockAdminClassifier(ctrl)
		resolver.EXPECT().Resolve(ctx, creds).Return(&usecase.Resolution{Identity: &ident}, nil)
		classifier.EXPECT().IsAdmin(ctx, ident).Return(false, nil)

		decision, _, err := queries.NewAccessQueries(resolver, classifier).Check(ctx, creds)
		require.NoError(t, err)
		assert.True(t, decision.Authenticated)
		assert.False(t, decision.IsAdmin)
	})
}
