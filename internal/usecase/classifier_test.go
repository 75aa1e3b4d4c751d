//go:build unit

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"admin-console/internal/pkg/config"
	"admin-console/internal/pkg/errs"
	"admin-console/internal/usecase"
	"admin-console/internal/usecase/readmodel"
	usecasemock "admin-console/tests/mock/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var errStoreDown = errors.New("connection refused")

func newPolicy(t *testing.T, emails []string, policy string) usecase.AdminPolicy {
	t.Helper()
	p, err := usecase.NewAdminPolicy(config.AdminConfig{Emails: emails, Policy: policy})
	require.NoError(t, err)
	return p
}

func TestNewAdminPolicy(t *testing.T) {
	t.Run("unknown policy is a startup error", func(t *testing.T) {
		_, err := usecase.NewAdminPolicy(config.AdminConfig{Policy: "everyone_is_admin"})
		require.Error(t, err)
	})

	t.Run("allow list is normalized", func(t *testing.T) {
		p := newPolicy(t, []string{" Root@Example.com ", ""}, usecase.PolicyAllowListOnly)
		assert.True(t, p.Allows("root@example.com"))
		assert.True(t, p.Allows("ROOT@EXAMPLE.COM"))
		assert.False(t, p.Allows(""))
	})
}

func TestAdminClassifier_IsAdmin(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	testCases := []struct {
		name          string
		policy        string
		emails        []string
		ident         readmodel.Identity
		setupMock     func(*usecasemock.MockMembershipStore)
		expectedAdmin bool
		expectedErrIs error
	}{
		{
			name:          "allow-list hit never touches the store",
			policy:        usecase.PolicyAllowListAndMembership,
			emails:        []string{"root@example.com"},
			ident:         readmodel.Identity{ID: userID.String(), Email: "root@example.com"},
			setupMock:     func(m *usecasemock.MockMembershipStore) {},
			expectedAdmin: true,
		},
		{
			name:   "membership row grants admin",
			policy: usecase.PolicyAllowListAndMembership,
			ident:  readmodel.Identity{ID: userID.String(), Email: "member@example.com"},
			setupMock: func(m *usecasemock.MockMembershipStore) {
				m.EXPECT().Exists(ctx, userID).Return(true, nil)
			},
			expectedAdmin: true,
		},
		{
			name:   "no row means not admin",
			policy: usecase.PolicyAllowListAndMembership,
			ident:  readmodel.Identity{ID: userID.String(), Email: "user@example.com"},
			setupMock: func(m *usecasemock.MockMembershipStore) {
				m.EXPECT().Exists(ctx, userID).Return(false, nil)
			},
			expectedAdmin: false,
		},
		{
			name:   "store failure propagates, never grants",
			policy: usecase.PolicyAllowListAndMembership,
			ident:  readmodel.Identity{ID: userID.String(), Email: "user@example.com"},
			setupMock: func(m *usecasemock.MockMembershipStore) {
				m.EXPECT().Exists(ctx, userID).Return(false, errStoreDown)
			},
			expectedAdmin: false,
			expectedErrIs: errs.ErrMembershipLookup,
		},
		{
			name:          "non-uuid id cannot have a membership row",
			policy:        usecase.PolicyAllowListAndMembership,
			ident:         readmodel.Identity{ID: "legacy-id-42", Email: "user@example.com"},
			setupMock:     func(m *usecasemock.MockMembershipStore) {},
			expectedAdmin: false,
		},
		{
			name:          "allow-list-only policy skips the store",
			policy:        usecase.PolicyAllowListOnly,
			ident:         readmodel.Identity{ID: userID.String(), Email: "user@example.com"},
			setupMock:     func(m *usecasemock.MockMembershipStore) {},
			expectedAdmin: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := usecasemock.NewMockMembershipStore(ctrl)
			tc.setupMock(store)

			classifier := usecase.NewAdminClassifier(newPolicy(t, tc.emails, tc.policy), store)
			isAdmin, err := classifier.IsAdmin(ctx, tc.ident)

			if tc.expectedErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.expectedErrIs))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.expectedAdmin, isAdmin)
		})
	}
}

func TestAdminClassifier_NilStore(t *testing.T) {
	ctx := context.Background()

	t.Run("membership policy without a store is a configuration error", func(t *testing.T) {
		classifier := usecase.NewAdminClassifier(
			newPolicy(t, nil, usecase.PolicyAllowListAndMembership), nil)

		isAdmin, err := classifier.IsAdmin(ctx, readmodel.Identity{ID: uuid.New().String(), Email: "user@example.com"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrServerConfiguration))
		assert.False(t, isAdmin)
	})

	t.Run("allow-list hit still works without a store", func(t *testing.T) {
		classifier := usecase.NewAdminClassifier(
			newPolicy(t, []string{"root@example.com"}, usecase.PolicyAllowListAndMembership), nil)

		isAdmin, err := classifier.IsAdmin(ctx, readmodel.Identity{ID: uuid.New().String(), Email: "root@example.com"})
		require.NoError(t, err)
		assert.True(t, isAdmin)
	})
}
