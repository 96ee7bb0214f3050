package domain

import "errors"

var (
	// ErrAlreadyExists is returned by the store when a uniqueness constraint rejects an insert.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrStoreUnavailable wraps every other persistence failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)
