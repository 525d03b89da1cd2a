package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hibiki-dev/encore/internal/domain/song"
)

func TestSearchFilter(t *testing.T) {
	f := NewSearchFilter()
	s := song.Song{Name: "Karma Police", Artist: "Radiohead", Genre: "alt rock", Charter: "someone"}

	tests := []struct {
		name     string
		query    string
		expected bool
	}{
		{name: "matches name substring", query: "karma", expected: true},
		{name: "matches artist", query: "RADIO", expected: true},
		{name: "matches genre", query: "alt", expected: true},
		{name: "charter not in default fields", query: "someone", expected: false},
		{name: "no match", query: "zeppelin", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Query{Search: tt.query}
			assert.True(t, f.Active(q))
			assert.Equal(t, tt.expected, f.Match(q, s))
		})
	}
}

func TestSearchFilter_Active(t *testing.T) {
	f := NewSearchFilter()
	assert.False(t, f.Active(Query{Search: ""}))
	assert.False(t, f.Active(Query{Search: "   "}))
	assert.True(t, f.Active(Query{Search: "a"}))

	assert.NoError(t, f.ValidateConfig(map[string]any{"min_length": 3}))
	assert.False(t, f.Active(Query{Search: "ab"}))
	assert.True(t, f.Active(Query{Search: "abc"}))
}

func TestSearchFilter_ValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		settings  map[string]any
		expectErr bool
	}{
		{name: "nil settings use defaults", settings: nil, expectErr: false},
		{name: "custom fields", settings: map[string]any{"fields": []string{"name", "charter"}}, expectErr: false},
		{name: "unknown field rejected", settings: map[string]any{"fields": []string{"lyrics"}}, expectErr: true},
		{name: "zero min length rejected", settings: map[string]any{"min_length": 0}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSearchFilter().ValidateConfig(tt.settings)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSearchFilter_ConfiguredFields(t *testing.T) {
	f := NewSearchFilter()
	assert.NoError(t, f.ValidateConfig(map[string]any{"fields": []string{"charter"}}))

	s := song.Song{Name: "Karma Police", Charter: "chartguy"}
	assert.True(t, f.Match(Query{Search: "chartguy"}, s))
	assert.False(t, f.Match(Query{Search: "karma"}, s))
}

func TestGenreFilter(t *testing.T) {
	f := NewGenreFilter()
	s := song.Song{ParentGenre: "Rock", SubGenre: "Grunge"}

	tests := []struct {
		name     string
		query    Query
		active   bool
		expected bool
	}{
		{name: "inactive when empty", query: Query{}, active: false},
		{name: "inactive with all sentinel", query: Query{Genres: []string{"Rock", AllGenres}}, active: false},
		{name: "matches parent", query: Query{Genres: []string{"Rock"}}, active: true, expected: true},
		{name: "matches sub", query: Query{Genres: []string{"Grunge"}}, active: true, expected: true},
		{name: "no match", query: Query{Genres: []string{"Jazz"}}, active: true, expected: false},
		{
			name:     "other matches songs outside top genres",
			query:    Query{Genres: []string{"Other"}, TopGenres: []string{"Pop", "Metal"}},
			active:   true,
			expected: true,
		},
		{
			name:     "other excludes songs inside top genres",
			query:    Query{Genres: []string{"Other"}, TopGenres: []string{"Rock", "Pop"}},
			active:   true,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.active, f.Active(tt.query))
			if tt.active {
				assert.Equal(t, tt.expected, f.Match(tt.query, s))
			}
		})
	}
}

func TestInstrumentFilter(t *testing.T) {
	f := NewInstrumentFilter()
	withDrums := song.Song{Instruments: "guitar,drums"}
	noDescriptor := song.Song{}

	assert.False(t, f.Active(Query{}))
	assert.True(t, f.Active(Query{Instruments: []string{"drums"}}))

	assert.True(t, f.Match(Query{Instruments: []string{"drums"}}, withDrums))
	assert.True(t, f.Match(Query{Instruments: []string{"guitar", "drums"}}, withDrums))
	assert.False(t, f.Match(Query{Instruments: []string{"bass"}}, withDrums))

	// Songs without a descriptor fail every instrument predicate.
	assert.False(t, f.Match(Query{Instruments: []string{"drums"}}, noDescriptor))
}

func TestHiddenFilter(t *testing.T) {
	f := NewHiddenFilter()
	s := song.Song{Name: "Creep", Artist: "Radiohead"}
	hidden := map[string]struct{}{s.Key(): {}}

	assert.False(t, f.Active(Query{}))
	assert.True(t, f.Active(Query{Hidden: hidden}))

	assert.False(t, f.Match(Query{Hidden: hidden}, s))
	assert.True(t, f.Match(Query{Hidden: hidden}, song.Song{Name: "Other", Artist: "Band"}))
}

func TestChain_Apply(t *testing.T) {
	catalog := []song.Song{
		{Name: "Creep", Artist: "Radiohead", ParentGenre: "Rock", Instruments: "guitar,vocals"},
		{Name: "Clocks", Artist: "Coldplay", ParentGenre: "Pop", Instruments: "keys,vocals"},
		{Name: "One", Artist: "Metallica", ParentGenre: "Metal", Instruments: "guitar,drums"},
	}

	chain := Default()

	// Inactive query passes everything through in catalog order.
	assert.Equal(t, catalog, chain.Apply(Query{}, catalog))

	// Predicates AND together.
	got := chain.Apply(Query{Search: "c", Genres: []string{"Pop"}}, catalog)
	assert.Len(t, got, 1)
	assert.Equal(t, "Clocks", got[0].Name)

	// Hidden songs are excluded even when they match the search.
	hidden := map[string]struct{}{catalog[0].Key(): {}}
	got = chain.Apply(Query{Search: "creep", Hidden: hidden}, catalog)
	assert.Empty(t, got)
}

func TestRegistry(t *testing.T) {
	registered := GetRegistered()
	for _, name := range []string{"search_filter", "genre_filter", "instrument_filter", "hidden_filter"} {
		factory, ok := registered[name]
		assert.True(t, ok, "missing %s", name)
		assert.Equal(t, name, factory().Name())
	}
}
