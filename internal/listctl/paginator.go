// ABOUTME: Pure page arithmetic for entity lists
// ABOUTME: Translates page numbers into limit/offset windows and totals into page counts

package listctl

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned for out-of-range paging input
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultPageSize is used when a controller is built without WithPageSize
const DefaultPageSize = 20

// PageWindow is the limit/offset pair sent to the backend
type PageWindow struct {
	Limit  int
	Offset int
}

// Window returns the fetch window for a 1-based page
func Window(page, pageSize int) (PageWindow, error) {
	if page < 1 {
		return PageWindow{}, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidArgument, page)
	}
	if pageSize <= 0 {
		return PageWindow{}, fmt.Errorf("%w: page size must be > 0, got %d", ErrInvalidArgument, pageSize)
	}
	return PageWindow{Limit: pageSize, Offset: (page - 1) * pageSize}, nil
}

// PageCount returns ceil(total/pageSize), with 0 for an empty list
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ShowControls reports whether pagination controls are worth rendering
func ShowControls(total, pageSize int) bool {
	return PageCount(total, pageSize) > 1
}
