//go:build unit

package queries_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"admin-console/internal/domain/directory"
	"admin-console/internal/pkg/clock"
	"admin-console/internal/usecase/queries"
	"admin-console/tests/common/builder"
	queriesmock "admin-console/tests/mock/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var listNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeLister serves a fixed record set paginated the way the provider does.
// When endless is set every page comes back full, which is how a runaway
// cursor looks to the caller.
type fakeLister struct {
	users      []directory.UserRecord
	total      *int
	sendCursor bool
	endless    bool
	calls      int
}

func (f *fakeLister) ListUsers(_ context.Context, page, perPage int) (*queries.ListedPage, error) {
	f.calls++

	if f.endless {
		users := make([]directory.UserRecord, perPage)
		for i := range users {
			users[i] = builder.NewUserRecordBuilder().
				WithEmail(fmt.Sprintf("user%d-%d@example.com", page, i)).
				Build()
		}
		return &queries.ListedPage{Users: users}, nil
	}

	start := (page - 1) * perPage
	if start > len(f.users) {
		start = len(f.users)
	}
	end := min(start+perPage, len(f.users))

	result := &queries.ListedPage{Users: f.users[start:end], Total: f.total}
	if f.sendCursor && end < len(f.users) {
		result.NextPage = page + 1
	}
	return result, nil
}

func makeUsers(n int, domain string) []directory.UserRecord {
	users := make([]directory.UserRecord, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, builder.NewUserRecordBuilder().
			WithEmail(fmt.Sprintf("user%d@%s", i, domain)).
			WithFullName(fmt.Sprintf("User %d", i)).
			Build())
	}
	return users
}

func newDirectoryQueries(lister queries.DirectoryLister) queries.DirectoryQueries {
	return queries.NewDirectoryQueries(lister, clock.NewMockClock(listNow))
}

func TestDirectoryQueries_ListUsers_Unfiltered(t *testing.T) {
	ctx := context.Background()

	t.Run("single upstream page per request", func(t *testing.T) {
		total := 120
		lister := &fakeLister{users: makeUsers(120, "example.com"), total: &total, sendCursor: true}

		result, err := newDirectoryQueries(lister).ListUsers(ctx, 2, 50, "", "")
		require.NoError(t, err)
		assert.Equal(t, 1, lister.calls)
		assert.Len(t, result.Users, 50)
		assert.Equal(t, 2, result.Page)
		assert.Equal(t, 50, result.PerPage)
		require.NotNil(t, result.NextPage)
		assert.Equal(t, 3, *result.NextPage)
		require.NotNil(t, result.Total)
		assert.Equal(t, 120, *result.Total)
	})

	t.Run("last partial page has no next page", func(t *testing.T) {
		lister := &fakeLister{users: makeUsers(120, "example.com"), sendCursor: true}

		result, err := newDirectoryQueries(lister).ListUsers(ctx, 3, 50, "", "")
		require.NoError(t, err)
		assert.Len(t, result.Users, 20)
		assert.Nil(t, result.NextPage)
	})

	t.Run("full page implies a next page even without a cursor", func(t *testing.T) {
		lister := &fakeLister{users: makeUsers(100, "example.com")}

		result, err := newDirectoryQueries(lister).ListUsers(ctx, 1, 50, "", "")
		require.NoError(t, err)
		require.NotNil(t, result.NextPage)
		assert.Equal(t, 2, *result.NextPage)
	})

	t.Run("page and perPage are clamped", func(t *testing.T) {
		testCases := []struct {
			name          string
			page, perPage int
			wantPage      int
			wantPerPage   int
		}{
			{"zero page becomes first", 0, 50, 1, 50},
			{"negative page becomes first", -3, 50, 1, 50},
			{"zero perPage becomes default", 1, 0, 1, 50},
			{"oversized perPage is capped", 1, 999, 1, 200},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				lister := &fakeLister{users: makeUsers(10, "example.com")}
				result, err := newDirectoryQueries(lister).ListUsers(ctx, tc.page, tc.perPage, "", "")
				require.NoError(t, err)
				assert.Equal(t, tc.wantPage, result.Page)
				assert.Equal(t, tc.wantPerPage, result.PerPage)
			})
		}
	})

	t.Run("upstream failure propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		lister := queriesmock.NewMockDirectoryLister(ctrl)
		lister.EXPECT().ListUsers(ctx, 1, 50).Return(nil, errors.New("listing unavailable"))

		_, err := newDirectoryQueries(lister).ListUsers(ctx, 1, 50, "", "")
		require.Error(t, err)
	})
}

func TestDirectoryQueries_ListUsers_Filtered(t *testing.T) {
	ctx := context.Background()

	// 130 matching plus 120 non-matching records across multiple upstream pages.
	users := append(makeUsers(130, "match.example.com"), makeUsers(120, "other.example.net")...)

	t.Run("filter spans every upstream page and paginates in memory", func(t *testing.T) {
		lister := &fakeLister{users: users, sendCursor: true}

		result, err := newDirectoryQueries(lister).ListUsers(ctx, 1, 50, "match.example.com", "")
		require.NoError(t, err)
		assert.Greater(t, lister.calls, 1, "filtered listing must fetch beyond the first page")
		assert.Len(t, result.Users, 50)
		require.NotNil(t, result.Total)
		assert.Equal(t, 130, *result.Total)
		require.NotNil(t, result.NextPage)
		assert.Equal(t, 2, *result.NextPage)
	})

	t.Run("final filtered page is partial with no next page", func(t *testing.T) {
		lister := &fakeLister{users: users, sendCursor: true}

		result, err := newDirectoryQueries(lister).ListUsers(ctx, 3, 50, "match.example.com", "")
		require.NoError(t, err)
		assert.Len(t, result.Users, 30)
		assert.Nil(t, result.NextPage)
	})

	t.Run("page past the end is empty, not an error", func(t *testing.T) {
		lister := &fakeLister{users: users, sendCursor: true}

		result, err := newDirectoryQueries(lister).ListUsers(ctx, 99, 50, "match.example.com", "")
		require.NoError(t, err)
		assert.Empty(t, result.Users)
		require.NotNil(t, result.Total)
		assert.Equal(t, 130, *result.Total)
	})

	t.Run("status filter counts the filtered set exactly", func(t *testing.T) {
		mixed := []directory.UserRecord{
			builder.NewUserRecordBuilder().WithEmail("a@example.com").Build(),
			builder.NewUserRecordBuilder().WithEmail("b@example.com").AsInvited().Build(),
			builder.NewUserRecordBuilder().WithEmail("c@example.com").AsBannedForever().Build(),
		}
		lister := &fakeLister{users: mixed}

		result, err := newDirectoryQueries(lister).ListUsers(ctx, 1, 50, "", directory.StatusDisabled)
		require.NoError(t, err)
		require.Len(t, result.Users, 1)
		assert.Equal(t, "c@example.com", result.Users[0].Email)
		assert.Equal(t, directory.StatusDisabled, result.Users[0].Status)
	})

	t.Run("runaway cursor stops at the page ceiling", func(t *testing.T) {
		lister := &fakeLister{endless: true}

		result, err := newDirectoryQueries(lister).ListUsers(ctx, 1, 50, "example.com", "")
		require.NoError(t, err)
		assert.Equal(t, 50, lister.calls)
		// Partial result, not a hang: the ceiling bounds the fetched set.
		require.NotNil(t, result.Total)
		assert.Equal(t, 50*50, *result.Total)
	})
}

func TestDirectoryQueries_CountUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("upstream total is authoritative when present", func(t *testing.T) {
		total := 4321
		lister := &fakeLister{users: makeUsers(200, "example.com"), total: &total}

		count, err := newDirectoryQueries(lister).CountUsers(ctx, "", "")
		require.NoError(t, err)
		assert.Equal(t, 4321, count)
		assert.Equal(t, 1, lister.calls)
	})

	t.Run("page walk when the upstream has no total", func(t *testing.T) {
		lister := &fakeLister{users: makeUsers(450, "example.com"), sendCursor: true}

		count, err := newDirectoryQueries(lister).CountUsers(ctx, "", "")
		require.NoError(t, err)
		assert.Equal(t, 450, count)
	})

	t.Run("walk is capped", func(t *testing.T) {
		lister := &fakeLister{endless: true}

		count, err := newDirectoryQueries(lister).CountUsers(ctx, "", "")
		require.NoError(t, err)
		assert.LessOrEqual(t, count, 50000)
		assert.LessOrEqual(t, lister.calls, 250)
	})

	t.Run("filtered count is exact", func(t *testing.T) {
		users := append(makeUsers(7, "match.example.com"), makeUsers(5, "other.example.net")...)
		lister := &fakeLister{users: users, sendCursor: true}

		count, err := newDirectoryQueries(lister).CountUsers(ctx, "match.example.com", "")
		require.NoError(t, err)
		assert.Equal(t, 7, count)
	})

	t.Run("upstream failure propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		lister := queriesmock.NewMockDirectoryLister(ctrl)
		lister.EXPECT().ListUsers(ctx, gomock.Any(), gomock.Any()).Return(nil, errors.New("listing unavailable"))

		_, err := newDirectoryQueries(lister).CountUsers(ctx, "", "")
		require.Error(t, err)
	})
}
