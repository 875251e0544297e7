package models

import "github.com/google/uuid"

// TransactionFilters narrows a user's transaction listing. Dates are ISO
// strings so they compare lexically against the stored column.
type TransactionFilters struct {
	UserID   uuid.UUID
	Category string
	FromDate string
	ToDate   string
	Source   string
	Offset   int
	Limit    int
}

// IsZero reports whether no narrowing filter is set.
func (f TransactionFilters) IsZero() bool {
	return f.Category == "" && f.FromDate == "" && f.ToDate == "" && f.Source == ""
}
