package filter

import "github.com/hibiki-dev/encore/internal/domain/song"

// Chain AND-composes filters: a song is displayed only when every active
// filter matches it.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{filters: make([]Filter, 0)}
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Match runs all active filters against the song, short-circuiting on the
// first miss.
func (c *Chain) Match(q Query, s song.Song) bool {
	for _, f := range c.filters {
		if !f.Active(q) {
			continue
		}
		if !f.Match(q, s) {
			return false
		}
	}
	return true
}

// Apply returns the subset of the catalog matching the query, in catalog
// order.
func (c *Chain) Apply(q Query, catalog []song.Song) []song.Song {
	out := make([]song.Song, 0, len(catalog))
	for _, s := range catalog {
		if c.Match(q, s) {
			out = append(out, s)
		}
	}
	return out
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}

// Default builds the standard display chain: hidden-song exclusion,
// text search, genre and instrument filters.
func Default() *Chain {
	c := NewChain()
	c.Add(NewHiddenFilter())
	c.Add(NewSearchFilter())
	c.Add(NewGenreFilter())
	c.Add(NewInstrumentFilter())
	return c
}
