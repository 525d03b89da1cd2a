package filter

import (
	"github.com/hibiki-dev/encore/internal/domain/song"
)

// HiddenFilter excludes songs the user has hidden. Hidden songs stay
// requestable and still render inside the queue itself; only the
// searchable catalog list excludes them.
type HiddenFilter struct{}

// NewHiddenFilter creates a new hidden-song filter.
func NewHiddenFilter() *HiddenFilter {
	return &HiddenFilter{}
}

func (f *HiddenFilter) Name() string {
	return "hidden_filter"
}

func (f *HiddenFilter) Description() string {
	return "Excludes songs in the user's hidden set from the searchable list"
}

func (f *HiddenFilter) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

func (f *HiddenFilter) Active(q Query) bool {
	return len(q.Hidden) > 0
}

func (f *HiddenFilter) Match(q Query, s song.Song) bool {
	_, hidden := q.Hidden[s.Key()]
	return !hidden
}

func init() {
	Register("hidden_filter", func() Filter {
		return NewHiddenFilter()
	})
}
