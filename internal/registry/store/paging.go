package store

import (
	"fmt"
	"strconv"

	e "github.com/gartstein/registry/internal/registry/errors"
)

// ParsePage parses caller-supplied page size and 1-based page index.
// Both must be base-10 integers of at least 1.
func ParsePage(pageSize, pageIndex string) (size, index int, err error) {
	size, err = parsePositive("pageSize", pageSize)
	if err != nil {
		return 0, 0, err
	}
	index, err = parsePositive("pageIndex", pageIndex)
	if err != nil {
		return 0, 0, err
	}
	return size, index, nil
}

func parsePositive(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", e.ErrInvalidInput, name, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %s must be at least 1, got %d", e.ErrInvalidInput, name, n)
	}
	return n, nil
}

// Paginate returns the slice [size*(index-1), size*index) of items clipped to
// its length. Pages past the end are empty, never nil.
func Paginate[T any](items []T, size, index int) []T {
	if size < 1 || index < 1 {
		return []T{}
	}
	start := size * (index - 1)
	// overflowed or past the end
	if start/size != index-1 || start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	if end < start {
		end = len(items)
	}
	return items[start:end]
}
