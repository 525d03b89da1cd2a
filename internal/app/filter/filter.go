// Package filter provides the predicate chain that narrows the catalog
// to the displayed song list.
package filter

import "github.com/hibiki-dev/encore/internal/domain/song"

// Query carries the active filter inputs derived from the view state and
// user preferences. All active predicates are AND-composed.
type Query struct {
	Search      string              // Free-text search, already debounced
	Genres      []string            // Active genre names; empty or the "all" sentinel disables genre filtering
	TopGenres   []string            // Currently displayed top parent genres, resolves "Other" membership
	Instruments []string            // Active instrument predicate names
	Hidden      map[string]struct{} // Hidden song identity keys
}

// AllGenres is the sentinel meaning "no genre filtering".
const AllGenres = "all"

// Filter is a single display predicate over catalog songs.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ValidateConfig validates and applies the filter configuration.
	ValidateConfig(settings map[string]any) error
	// Active reports whether the query activates this filter at all.
	Active(q Query) bool
	// Match reports whether the song passes the filter.
	Match(q Query, s song.Song) bool
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}
