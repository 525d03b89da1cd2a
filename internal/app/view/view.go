// Package view derives the displayed song subset from the catalog, the
// active filters, the sort order and the pagination cursor.
package view

import (
	"github.com/hibiki-dev/encore/internal/app/filter"
	"github.com/hibiki-dev/encore/internal/domain/song"
)

// DefaultPageSize is the number of songs appended per "load more".
const DefaultPageSize = 50

// State is the ephemeral view state. It is recomputed, never persisted,
// except for the sort spec which the preference store opts into.
type State struct {
	Search      string
	Genres      []string
	Instruments []string
	Sort        Spec
	Page        int
	HasMore     bool
}

// NewState returns the default view state: no filters, first page.
func NewState() State {
	return State{Genres: []string{filter.AllGenres}, Sort: DefaultSpec()}
}

// resetPaging rewinds to the first page whenever any filter, search term
// or sort changes.
func (st *State) resetPaging() {
	st.Page = 0
	st.HasMore = false
}

// SetSearch replaces the search term and resets pagination.
func (st *State) SetSearch(q string) {
	st.Search = q
	st.resetPaging()
}

// SetGenres replaces the active genre set and resets pagination.
func (st *State) SetGenres(genres []string) {
	if len(genres) == 0 {
		genres = []string{filter.AllGenres}
	}
	st.Genres = genres
	st.resetPaging()
}

// ToggleInstrument flips an instrument predicate and resets pagination.
func (st *State) ToggleInstrument(name string) {
	for i, n := range st.Instruments {
		if n == name {
			st.Instruments = append(st.Instruments[:i], st.Instruments[i+1:]...)
			st.resetPaging()
			return
		}
	}
	st.Instruments = append(st.Instruments, name)
	st.resetPaging()
}

// SetSort replaces the sort spec and resets pagination.
func (st *State) SetSort(sp Spec) {
	st.Sort = sp
	st.resetPaging()
}

// NextPage advances the pagination cursor. It is a no-op when the
// current derivation reported no further pages.
func (st *State) NextPage() {
	if st.HasMore {
		st.Page++
	}
}

// Inputs bundles everything Derive needs besides the view state.
type Inputs struct {
	Catalog   []song.Song
	Favorites map[string]struct{} // Favorited song keys
	Hidden    map[string]struct{} // Hidden song keys
	Queued    map[string]struct{} // Song keys present in the queue mirror
	TopGenres []string            // Displayed top parent genres, resolves "Other"
}

// Result is a derived page of the filtered, sorted catalog.
type Result struct {
	Songs   []song.Song // Up to PageSize*(Page+1) songs
	Total   int         // Size of the whole filtered set
	HasMore bool        // More pages available
}

// Empty reports whether the filtered set has no songs at all. The
// caller renders an explicit "no results" placeholder, not an error.
func (r Result) Empty() bool {
	return r.Total == 0
}

// Engine derives displayed pages. It is a pure function of its inputs:
// the same catalog, preferences and view state always produce the same
// page.
type Engine struct {
	chain    *filter.Chain
	pageSize int
}

// NewEngine creates an engine over the given filter chain. A pageSize
// of zero falls back to DefaultPageSize.
func NewEngine(chain *filter.Chain, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{chain: chain, pageSize: pageSize}
}

// Derive filters, sorts and paginates the catalog. The returned slice is
// freshly allocated; the catalog is never mutated.
func (e *Engine) Derive(in Inputs, st State) Result {
	q := filter.Query{
		Search:      st.Search,
		Genres:      st.Genres,
		TopGenres:   in.TopGenres,
		Instruments: st.Instruments,
		Hidden:      in.Hidden,
	}

	filtered := e.chain.Apply(q, in.Catalog)
	st.Sort.Sort(filtered, e.bucketFunc(in, st.Sort.Primary))

	limit := e.pageSize * (st.Page + 1)
	hasMore := len(filtered) > limit
	page := filtered
	if hasMore {
		page = filtered[:limit]
	}

	return Result{Songs: page, Total: len(filtered), HasMore: hasMore}
}

func (e *Engine) bucketFunc(in Inputs, b Bucket) func(key string) bool {
	switch b {
	case BucketFavorites:
		return func(key string) bool {
			_, ok := in.Favorites[key]
			return ok
		}
	case BucketQueued:
		return func(key string) bool {
			_, ok := in.Queued[key]
			return ok
		}
	default:
		return nil
	}
}
