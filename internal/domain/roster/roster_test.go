package roster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/gridcast/internal/domain/roster"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims and lowercases", in: "  Max Verstappen ", want: "max verstappen"},
		{name: "keeps inner spacing", in: "Red Bull  Racing", want: "red bull  racing"},
		{name: "composes combining marks", in: "Hülkenberg", want: "hülkenberg"},
		{name: "empty stays empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roster.Normalize(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	r, err := roster.New([]string{"Lando Norris", "oscar piastri", "lando norris ", ""})
	require.NoError(t, err)

	assert.Equal(t, []string{"lando norris", "oscar piastri"}, r.Names())
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Contains("oscar piastri"))
	assert.False(t, r.Contains("Oscar Piastri"), "Contains expects normalized input")

	idx, ok := r.Index("oscar piastri")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestNew_Empty(t *testing.T) {
	_, err := roster.New([]string{" ", ""})
	assert.ErrorIs(t, err, roster.ErrEmpty)
}

func TestNames_ReturnsCopy(t *testing.T) {
	r, err := roster.New([]string{"a", "b"})
	require.NoError(t, err)

	names := r.Names()
	names[0] = "mutated"
	assert.Equal(t, "a", r.Names()[0])
}

func TestSuggest(t *testing.T) {
	r, err := roster.New(roster.DefaultNames)
	require.NoError(t, err)

	got, ok := r.Suggest("Max Verstapen")
	assert.True(t, ok)
	assert.Equal(t, "max verstappen", got)

	_, ok = r.Suggest("ayrton senna")
	assert.False(t, ok)

	strict, err := roster.New(roster.DefaultNames, roster.WithMaxSuggestDistance(0))
	require.NoError(t, err)
	_, ok = strict.Suggest("max verstapen")
	assert.False(t, ok)
}
