package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrRoomNotFound is returned when the referenced room does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrStoreUnavailable wraps every failure of the underlying database or cache.
	ErrStoreUnavailable = errors.New("room store unavailable")
)

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
