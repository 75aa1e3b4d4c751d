package queries

import (
	"context"
	"time"

	"admin-console/internal/domain/directory"
	"admin-console/internal/pkg/clock"
	"admin-console/internal/usecase/readmodel"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200

	// The bulk listing has no server-side filter, so filtered queries fetch
	// everything. The page ceiling turns a runaway cursor into a partial
	// result instead of an infinite fetch.
	fetchAllPerPage = 100
	maxFetchPages   = 50

	// Unfiltered counts walk pages until this safety cap.
	countPerPage = 200
	countCap     = 50000
)

// DirectoryLister is the privileged slice of the identity provider that
// exposes the bulk user listing.
type DirectoryLister interface {
	ListUsers(ctx context.Context, page, perPage int) (*ListedPage, error)
}

// ListedPage is one upstream page. NextPage of zero means the upstream
// reported no further page.
type ListedPage struct {
	Users    []directory.UserRecord
	NextPage int
	Total    *int
}

type DirectoryQueries interface {
	ListUsers(ctx context.Context, page, perPage int, query string, status directory.Status) (*readmodel.UserDirectoryPage, error)
	CountUsers(ctx context.Context, query string, status directory.Status) (int, error)
}

type directoryQueriesImpl struct {
	lister DirectoryLister
	clock  clock.Clock
}

func NewDirectoryQueries(lister DirectoryLister, clk clock.Clock) DirectoryQueries {
	return &directoryQueriesImpl{
		lister: lister,
		clock:  clk,
	}
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampPerPage(perPage int) int {
	if perPage < 1 {
		return defaultPerPage
	}
	if perPage > maxPerPage {
		return maxPerPage
	}
	return perPage
}

// ListUsers passes pagination straight through when no filter is requested;
// otherwise it fetches all pages (bounded), filters in memory and paginates
// the filtered result.
func (q *directoryQueriesImpl) ListUsers(ctx context.Context, page, perPage int, query string, status directory.Status) (*readmodel.UserDirectoryPage, error) {
	page = clampPage(page)
	perPage = clampPerPage(perPage)
	now := q.clock.Now()

	if query == "" && status == "" {
		upstream, err := q.lister.ListUsers(ctx, page, perPage)
		if err != nil {
			return nil, err
		}

		result := &readmodel.UserDirectoryPage{
			Users:   summarize(upstream.Users, now),
			Page:    page,
			PerPage: perPage,
			Total:   upstream.Total,
		}
		if next := nextPageOf(upstream, page, perPage); next > 0 {
			result.NextPage = &next
		}
		return result, nil
	}

	all, _, err := q.fetchAll(ctx, min(perPage, fetchAllPerPage))
	if err != nil {
		return nil, err
	}

	filtered := directory.Filter(all, query, status, now)
	total := len(filtered)

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := min(start+perPage, total)

	result := &readmodel.UserDirectoryPage{
		Users:   summarize(filtered[start:end], now),
		Page:    page,
		PerPage: perPage,
		Total:   &total,
	}
	if end < total {
		next := page + 1
		result.NextPage = &next
	}
	return result, nil
}

// CountUsers returns the exact count for filtered queries and a capped walk
// of the upstream pages otherwise.
func (q *directoryQueriesImpl) CountUsers(ctx context.Context, query string, status directory.Status) (int, error) {
	if query != "" || status != "" {
		all, _, err := q.fetchAll(ctx, fetchAllPerPage)
		if err != nil {
			return 0, err
		}
		return len(directory.Filter(all, query, status, q.clock.Now())), nil
	}

	page := 1
	total := 0
	for total < countCap {
		upstream, err := q.lister.ListUsers(ctx, page, countPerPage)
		if err != nil {
			return 0, err
		}
		if upstream.Total != nil {
			// Upstream reported an authoritative count; trust it.
			return *upstream.Total, nil
		}

		total += len(upstream.Users)
		if len(upstream.Users) < countPerPage {
			break
		}
		page++
		if page*countPerPage >= countCap {
			break
		}
	}
	return total, nil
}

// fetchAll walks the upstream cursor up to maxFetchPages pages. Reaching the
// ceiling yields a partial result, never a hang.
func (q *directoryQueriesImpl) fetchAll(ctx context.Context, perPage int) ([]directory.UserRecord, *int, error) {
	var (
		all   []directory.UserRecord
		total *int
	)

	current := 1
	for iterations := 0; iterations < maxFetchPages; iterations++ {
		upstream, err := q.lister.ListUsers(ctx, current, perPage)
		if err != nil {
			return nil, nil, err
		}

		all = append(all, upstream.Users...)
		if upstream.Total != nil {
			total = upstream.Total
		}

		next := nextPageOf(upstream, current, perPage)
		if next == 0 || next == current {
			break
		}
		current = next
	}
	return all, total, nil
}

// nextPageOf prefers the upstream cursor and falls back to deriving one from
// a full page.
func nextPageOf(upstream *ListedPage, page, perPage int) int {
	if upstream.NextPage > 0 {
		return upstream.NextPage
	}
	if len(upstream.Users) == perPage {
		return page + 1
	}
	return 0
}

func summarize(records []directory.UserRecord, now time.Time) []directory.Summary {
	summaries := make([]directory.Summary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, directory.ToSummary(record, now))
	}
	return summaries
}
