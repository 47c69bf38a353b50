package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailed matches every *LoadError via errors.Is.
	ErrLoadFailed = errors.New("load failed")

	// ErrInvalidConfiguration is returned by New for unusable settings.
	ErrInvalidConfiguration = errors.New("invalid cache configuration")
)

/*
LoadError is what every waiter of a failed load receives.

The cache stores nothing for the key, so the next GetOrLoad simply tries again.
The cache never retries on the caller's behalf.
*/
type LoadError struct {
	Key any
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load failed for key %v: %v", e.Key, e.Err)
}

// Unwrap exposes the loader's own error.
func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoadFailed }
