package scoring

import "errors"

// Sentinel error kinds for this package. Only configuration problems are
// errors; data-quality issues degrade to defaults.
var (
	ErrEmptyRoster   = errors.New("roster is not configured")
	ErrInvalidSeason = errors.New("invalid current season")
	ErrInvalidPolicy = errors.New("invalid qualifying policy")
)

// Errors for derived tables that cannot be reassembled.
var (
	ErrSettingsMismatch = errors.New("derived tables were built under different settings")
	ErrNonFiniteScore   = errors.New("non-finite stored score")
)
