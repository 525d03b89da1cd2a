package queue

import "sort"

// UpNextSort is a local display ordering for the up-next list. It never
// mutates the authoritative order; reordering the real queue takes an
// explicit reorder command.
type UpNextSort int

const (
	SortMirror    UpNextSort = iota // Server order as pushed
	SortFavorites                   // Favorited songs first, mirror order within buckets
	SortOldest                      // Request time ascending
	SortNewest                      // Request time descending
)

// String returns the sort mode name used in persisted preferences.
func (m UpNextSort) String() string {
	switch m {
	case SortMirror:
		return "mirror"
	case SortFavorites:
		return "favorites"
	case SortOldest:
		return "oldest"
	case SortNewest:
		return "newest"
	default:
		return "unknown"
	}
}

// ParseUpNextSort parses a persisted sort mode name, defaulting to
// SortMirror for unknown values.
func ParseUpNextSort(name string) UpNextSort {
	switch name {
	case "favorites":
		return SortFavorites
	case "oldest":
		return SortOldest
	case "newest":
		return SortNewest
	default:
		return SortMirror
	}
}

// SortUpNext returns a copy of the up-next entries in the requested
// display order. Position 0 of the queue is never part of the input; the
// now-playing slot is exempt from local sorting.
func SortUpNext(entries []Entry, mode UpNextSort, isFavorite func(songKey string) bool) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	switch mode {
	case SortFavorites:
		if isFavorite == nil {
			return out
		}
		sort.SliceStable(out, func(i, j int) bool {
			return isFavorite(out[i].SongKey()) && !isFavorite(out[j].SongKey())
		})
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		})
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[j].RequestedAt.Before(out[i].RequestedAt)
		})
	}
	return out
}
