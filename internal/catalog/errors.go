package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyLoaded is returned when Load is called on a ready store.
	ErrAlreadyLoaded = errors.New("catalog already loaded")
	// ErrNotInitialized marks operations attempted before a successful Load.
	ErrNotInitialized = errors.New("catalog not initialized")
)

// InitError reports catalog or category data that cannot be used.
type InitError struct {
	Reason string
	Err    error
}

func (e *InitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog initialization failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("catalog initialization failed: %s", e.Reason)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
