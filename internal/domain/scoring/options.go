package scoring

import "github.com/okian/gridcast/internal/domain/roster"

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithCurrentSeason sets the season treated as current. The reference season
// used for team strength is the one before it.
func WithCurrentSeason(season int) Option {
	return func(b *Builder) {
		b.currentSeason = season
	}
}

// WithRoster sets the competitor allow-list.
func WithRoster(r *roster.Roster) Option {
	return func(b *Builder) {
		if r != nil {
			b.roster = r
		}
	}
}

// WithQualifyingPolicy sets how qualifying entries are weighted and defaulted.
func WithQualifyingPolicy(p QualifyingPolicy) Option {
	return func(b *Builder) {
		b.policy = p
	}
}
