package filter

import (
	"github.com/hibiki-dev/encore/internal/domain/genre"
	"github.com/hibiki-dev/encore/internal/domain/song"
)

// GenreFilter matches songs whose parent or sub genre is in the active
// genre set. The synthetic "Other" group is resolved dynamically: a song
// is "Other" when its parent genre is not among the currently displayed
// top genres.
type GenreFilter struct{}

// NewGenreFilter creates a new genre filter.
func NewGenreFilter() *GenreFilter {
	return &GenreFilter{}
}

func (f *GenreFilter) Name() string {
	return "genre_filter"
}

func (f *GenreFilter) Description() string {
	return "Matches songs whose parent or sub genre is in the active genre set"
}

func (f *GenreFilter) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

func (f *GenreFilter) Active(q Query) bool {
	if len(q.Genres) == 0 {
		return false
	}
	for _, g := range q.Genres {
		if g == AllGenres {
			return false
		}
	}
	return true
}

func (f *GenreFilter) Match(q Query, s song.Song) bool {
	for _, g := range q.Genres {
		if g == s.ParentGenre || g == s.SubGenre {
			return true
		}
		if g == genre.OtherGroup && f.isOther(q, s) {
			return true
		}
	}
	return false
}

// isOther reports whether the song falls outside the displayed top
// parent genres.
func (f *GenreFilter) isOther(q Query, s song.Song) bool {
	for _, top := range q.TopGenres {
		if s.ParentGenre == top {
			return false
		}
	}
	return true
}

func init() {
	Register("genre_filter", func() Filter {
		return NewGenreFilter()
	})
}
