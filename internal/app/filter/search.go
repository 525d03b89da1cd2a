package filter

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/hibiki-dev/encore/internal/domain/song"
)

// SearchConfig represents the configuration for SearchFilter.
type SearchConfig struct {
	// Fields searched by the free-text query.
	Fields []string `yaml:"fields" mapstructure:"fields" default:"[\"name\",\"artist\",\"genre\"]" validate:"min=1,dive,oneof=name artist album genre charter"`
	// Queries shorter than this are ignored.
	MinLength int `yaml:"min_length" mapstructure:"min_length" default:"1" validate:"gte=1"`
}

// SearchFilter matches songs by case-insensitive substring search.
type SearchFilter struct {
	config *SearchConfig
}

// NewSearchFilter creates a new search filter with default settings.
func NewSearchFilter() *SearchFilter {
	return &SearchFilter{}
}

func (f *SearchFilter) Name() string {
	return "search_filter"
}

func (f *SearchFilter) Description() string {
	return "Matches songs by case-insensitive substring search over the configured fields"
}

func (f *SearchFilter) ValidateConfig(settings map[string]any) error {
	var config SearchConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &config,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	f.config = &config
	return nil
}

func (f *SearchFilter) Active(q Query) bool {
	min := 1
	if f.config != nil {
		min = f.config.MinLength
	}
	return len(strings.TrimSpace(q.Search)) >= min
}

func (f *SearchFilter) Match(q Query, s song.Song) bool {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	fields := []string{"name", "artist", "genre"}
	if f.config != nil {
		fields = f.config.Fields
	}
	for _, field := range fields {
		var hay string
		switch field {
		case "name":
			hay = s.Name
		case "artist":
			hay = s.Artist
		case "album":
			hay = s.Album
		case "genre":
			hay = s.Genre
		case "charter":
			hay = s.Charter
		}
		if hay != "" && strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func init() {
	Register("search_filter", func() Filter {
		return NewSearchFilter()
	})
}
