package filter

import (
	"github.com/hibiki-dev/encore/internal/domain/song"
)

// InstrumentFilter matches songs satisfying every active instrument
// predicate. Songs without instrumentation data fail all instrument
// filters.
type InstrumentFilter struct{}

// NewInstrumentFilter creates a new instrument filter.
func NewInstrumentFilter() *InstrumentFilter {
	return &InstrumentFilter{}
}

func (f *InstrumentFilter) Name() string {
	return "instrument_filter"
}

func (f *InstrumentFilter) Description() string {
	return "Matches songs whose instrumentation descriptor covers every active instrument"
}

func (f *InstrumentFilter) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

func (f *InstrumentFilter) Active(q Query) bool {
	return len(q.Instruments) > 0
}

func (f *InstrumentFilter) Match(q Query, s song.Song) bool {
	inst := song.ParseInstruments(s.Instruments)
	for _, name := range q.Instruments {
		if !inst.Has(name) {
			return false
		}
	}
	return true
}

func init() {
	Register("instrument_filter", func() Filter {
		return NewInstrumentFilter()
	})
}
