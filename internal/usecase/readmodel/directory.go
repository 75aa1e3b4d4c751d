package readmodel

import "admin-console/internal/domain/directory"

// UserDirectoryPage is one page of the admin user directory.
type UserDirectoryPage struct {
	Users    []directory.Summary `json:"users"`
	Page     int                 `json:"page"`
	PerPage  int                 `json:"perPage"`
	NextPage *int                `json:"nextPage"`
	Total    *int                `json:"total,omitempty"`
}
