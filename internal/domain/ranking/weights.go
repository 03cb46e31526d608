package ranking

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Composite weights. They sum to 1.
const (
	WeightAvgScore        = 0.20
	WeightTrend           = 0.10
	WeightBonus           = 0.25
	WeightQualifyingScore = 0.30
	WeightTeamScore       = 0.15
)

// weightSumTolerance absorbs float rounding when checking the weight sum.
const weightSumTolerance = 1e-9

var validate = validator.New()

// Weights is the table of composite weights, one per component score.
type Weights struct {
	AvgScore        float64 `json:"avg_score" validate:"gte=0,lte=1"`
	Trend           float64 `json:"trend" validate:"gte=0,lte=1"`
	Bonus           float64 `json:"bonus" validate:"gte=0,lte=1"`
	QualifyingScore float64 `json:"qualif_score" validate:"gte=0,lte=1"`
	TeamScore       float64 `json:"team_score" validate:"gte=0,lte=1"`
}

// DefaultWeights is the published weight table.
var DefaultWeights = Weights{
	AvgScore:        WeightAvgScore,
	Trend:           WeightTrend,
	Bonus:           WeightBonus,
	QualifyingScore: WeightQualifyingScore,
	TeamScore:       WeightTeamScore,
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.AvgScore + w.Trend + w.Bonus + w.QualifyingScore + w.TeamScore
}

// Validate checks each weight lies in [0, 1] and the table sums to 1.
func (w Weights) Validate() error {
	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWeights, err)
	}
	if math.Abs(w.Sum()-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %g, want 1", ErrInvalidWeights, w.Sum())
	}
	return nil
}

// Components are the five inputs of the composite score.
type Components struct {
	AvgScore        float64
	Trend           float64
	Bonus           float64
	QualifyingScore float64
	TeamScore       float64
}

// Composite is the weighted sum of the components.
func Composite(w Weights, c Components) float64 {
	return c.AvgScore*w.AvgScore +
		c.Trend*w.Trend +
		c.Bonus*w.Bonus +
		c.QualifyingScore*w.QualifyingScore +
		c.TeamScore*w.TeamScore
}
