package dashboard

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidID is reported for route ids that are not positive integers.
	ErrInvalidID = errors.New("Invalid Inquiry ID")
	// ErrSaveInProgress rejects a second save of the same inquiry.
	ErrSaveInProgress = errors.New("a save for this inquiry is already in progress")
	ErrNotFound       = errors.New("inquiry not found")
)

// ParseID parses a route identifier as a positive integer written in plain
// decimal digits.
func ParseID(raw string) (int64, error) {
	if raw == "" {
		return 0, ErrInvalidID
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, ErrInvalidID
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
