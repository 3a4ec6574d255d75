package cli

import (
	"sort"

	"github.com/pkg/errors"
)

// SortOrder represents the available sorting options for "sub users"
type SortOrder string

const (
	SortByUser  SortOrder = "user"
	SortByCount SortOrder = "count"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(s); order {
	case SortByUser, SortByCount:
		return order, nil
	default:
		return "", errors.Errorf("invalid sort: %s (must be 'user' or 'count')", s)
	}
}

// sortUsers sorts rows in place. Count order puts the most subscribed users first and breaks
// ties by user ID.
func sortUsers(rows []UserRow, order SortOrder) {
	switch order {
	case SortByCount:
		sort.SliceStable(rows, func(i, j int) bool {
			if len(rows[i].Categories) != len(rows[j].Categories) {
				return len(rows[i].Categories) > len(rows[j].Categories)
			}
			return rows[i].UserID < rows[j].UserID
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].UserID < rows[j].UserID
		})
	}
}
