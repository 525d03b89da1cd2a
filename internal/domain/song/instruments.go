package song

import "strings"

// Instruments holds the parsed instrumentation flags for a song.
// Present is false when the song carries no descriptor at all; such
// songs fail every instrument filter.
type Instruments struct {
	Present bool
	Guitar  bool
	Bass    bool
	Drums   bool
	Vocals  bool
	Keys    bool
}

// instrument token aliases as they appear in uploaded descriptors.
var instrumentAliases = map[string]string{
	"guitar": "guitar",
	"lead":   "guitar",
	"rhythm": "guitar",
	"bass":   "bass",
	"drums":  "drums",
	"drum":   "drums",
	"vocals": "vocals",
	"vox":    "vocals",
	"keys":   "keys",
	"keyboard": "keys",
	"piano":  "keys",
}

// ParseInstruments parses a delimited instrumentation descriptor such as
// "guitar,bass,drums,vox". Tokens may be separated by commas, slashes or
// whitespace; unknown tokens are ignored.
func ParseInstruments(descriptor string) Instruments {
	fields := strings.FieldsFunc(descriptor, func(r rune) bool {
		return r == ',' || r == '/' || r == ';' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return Instruments{}
	}

	inst := Instruments{Present: true}
	for _, f := range fields {
		switch instrumentAliases[strings.ToLower(f)] {
		case "guitar":
			inst.Guitar = true
		case "bass":
			inst.Bass = true
		case "drums":
			inst.Drums = true
		case "vocals":
			inst.Vocals = true
		case "keys":
			inst.Keys = true
		}
	}
	return inst
}

// Has reports whether the named instrument is present. Songs without a
// descriptor report false for every instrument.
func (i Instruments) Has(name string) bool {
	if !i.Present {
		return false
	}
	switch strings.ToLower(name) {
	case "guitar":
		return i.Guitar
	case "bass":
		return i.Bass
	case "drums":
		return i.Drums
	case "vocals":
		return i.Vocals
	case "keys":
		return i.Keys
	default:
		return false
	}
}
