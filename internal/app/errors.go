package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the Service.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrNoSource          = errors.New("no data source configured")
	ErrUnknownCompetitor = errors.New("unknown competitor")
	ErrUnknownTeam       = errors.New("unknown team")
)

// LookupError reports a name that is not on a known list, with the closest
// known name when one is near enough.
type LookupError struct {
	Kind       error
	Name       string
	Suggestion string
}

func (e *LookupError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v: %q (did you mean %q?)", e.Kind, e.Name, e.Suggestion)
	}
	return fmt.Sprintf("%v: %q", e.Kind, e.Name)
}

// Unwrap exposes the sentinel kind to errors.Is.
func (e *LookupError) Unwrap() error { return e.Kind }
