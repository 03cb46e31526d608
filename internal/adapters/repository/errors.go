package repository

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrUnknownBackend = errors.New("unknown cache backend")
	ErrNotFound       = errors.New("cache table not found")
	ErrCorruptRow     = errors.New("corrupt cache row")
)
