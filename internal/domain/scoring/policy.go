package scoring

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/okian/gridcast/internal/domain/model"
)

var validate = validator.New()

// QualifyingPolicy controls how qualifying entries become a 0..1 score.
//
// Every entry's best time is pooled into a weighted mean per competitor, the
// weight depending on the session type. Equal weights reproduce plain pooling
// of regular and sprint sessions.
type QualifyingPolicy struct {
	// RegularWeight and SprintWeight weight entries by session type. A zero
	// weight ignores that session type entirely.
	RegularWeight float64 `validate:"gte=0"`
	SprintWeight  float64 `validate:"gte=0"`

	// NeutralScore is assigned to every competitor with data when all
	// qualifying times are identical.
	NeutralScore float64 `validate:"gte=0,lte=1"`

	// MissingScore is assigned to competitors without any qualifying data.
	MissingScore float64 `validate:"gte=0,lte=1"`
}

// DefaultQualifyingPolicy pools both session types unweighted.
func DefaultQualifyingPolicy() QualifyingPolicy {
	return QualifyingPolicy{
		RegularWeight: 1,
		SprintWeight:  1,
		NeutralScore:  1,
		MissingScore:  0,
	}
}

// Validate checks field bounds and that at least one session type counts.
func (p QualifyingPolicy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}
	if p.RegularWeight+p.SprintWeight <= 0 {
		return fmt.Errorf("%w: at least one session weight must be positive", ErrInvalidPolicy)
	}
	return nil
}

func (p QualifyingPolicy) weight(et model.EventType) float64 {
	if et == model.EventSprint {
		return p.SprintWeight
	}
	return p.RegularWeight
}
