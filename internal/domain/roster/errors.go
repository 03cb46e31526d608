package roster

import "errors"

// Sentinel error kinds for this package.
var (
	ErrEmpty = errors.New("roster is empty")
)
