// Package genre provides the two-level genre taxonomy: raw genre strings
// collapse into a smaller set of canonical parent categories.
package genre

import "strings"

// Label is the derived genre pair carried by every catalog song.
type Label struct {
	Parent string
	Sub    string
}

// canon is a canonical genre with its parent category.
type canon struct {
	name   string
	parent string
}

// aliases maps lower-cased raw genre strings to canonical entries.
// Uploaded charts are wildly inconsistent; this table grows as new
// spellings show up.
var aliases = map[string]canon{
	"rock":              {"Rock", "Rock"},
	"classic rock":      {"Classic Rock", "Rock"},
	"classicrock":       {"Classic Rock", "Rock"},
	"hard rock":         {"Hard Rock", "Rock"},
	"hardrock":          {"Hard Rock", "Rock"},
	"alt rock":          {"Alternative Rock", "Rock"},
	"alternative":       {"Alternative Rock", "Rock"},
	"alternative rock":  {"Alternative Rock", "Rock"},
	"alternativerock":   {"Alternative Rock", "Rock"},
	"indie":             {"Indie Rock", "Rock"},
	"indie rock":        {"Indie Rock", "Rock"},
	"indierock":         {"Indie Rock", "Rock"},
	"prog":              {"Progressive Rock", "Rock"},
	"prog rock":         {"Progressive Rock", "Rock"},
	"progressive rock":  {"Progressive Rock", "Rock"},
	"southern rock":     {"Southern Rock", "Rock"},
	"punk":              {"Punk", "Rock"},
	"punk rock":         {"Punk", "Rock"},
	"pop punk":          {"Pop Punk", "Rock"},
	"poppunk":           {"Pop Punk", "Rock"},
	"grunge":            {"Grunge", "Rock"},
	"pop":               {"Pop", "Pop"},
	"pop rock":          {"Pop Rock", "Pop"},
	"poprock":           {"Pop Rock", "Pop"},
	"pop-rock":          {"Pop Rock", "Pop"},
	"dance":             {"Dance", "Pop"},
	"disco":             {"Disco", "Pop"},
	"synthpop":          {"Synthpop", "Pop"},
	"synth pop":         {"Synthpop", "Pop"},
	"new wave":          {"New Wave", "Pop"},
	"newwave":           {"New Wave", "Pop"},
	"metal":             {"Metal", "Metal"},
	"heavy metal":       {"Heavy Metal", "Metal"},
	"heavymetal":        {"Heavy Metal", "Metal"},
	"thrash":            {"Thrash Metal", "Metal"},
	"thrash metal":      {"Thrash Metal", "Metal"},
	"death metal":       {"Death Metal", "Metal"},
	"deathmetal":        {"Death Metal", "Metal"},
	"power metal":       {"Power Metal", "Metal"},
	"nu metal":          {"Nu Metal", "Metal"},
	"numetal":           {"Nu Metal", "Metal"},
	"metalcore":         {"Metalcore", "Metal"},
	"hip hop":           {"Hip Hop", "Hip Hop"},
	"hiphop":            {"Hip Hop", "Hip Hop"},
	"hip-hop":           {"Hip Hop", "Hip Hop"},
	"rap":               {"Rap", "Hip Hop"},
	"r&b":               {"R&B", "R&B"},
	"rnb":               {"R&B", "R&B"},
	"soul":              {"Soul", "R&B"},
	"funk":              {"Funk", "R&B"},
	"motown":            {"Motown", "R&B"},
	"country":           {"Country", "Country"},
	"country rock":      {"Country Rock", "Country"},
	"bluegrass":         {"Bluegrass", "Country"},
	"folk":              {"Folk", "Folk"},
	"folk rock":         {"Folk Rock", "Folk"},
	"singer-songwriter": {"Singer-Songwriter", "Folk"},
	"blues":             {"Blues", "Blues"},
	"blues rock":        {"Blues Rock", "Blues"},
	"jazz":              {"Jazz", "Jazz"},
	"swing":             {"Swing", "Jazz"},
	"electronic":        {"Electronic", "Electronic"},
	"edm":               {"EDM", "Electronic"},
	"house":             {"House", "Electronic"},
	"techno":            {"Techno", "Electronic"},
	"dubstep":           {"Dubstep", "Electronic"},
	"drum and bass":     {"Drum & Bass", "Electronic"},
	"dnb":               {"Drum & Bass", "Electronic"},
	"reggae":            {"Reggae", "Reggae"},
	"ska":               {"Ska", "Reggae"},
	"j-rock":            {"J-Rock", "World"},
	"jrock":             {"J-Rock", "World"},
	"j-pop":             {"J-Pop", "World"},
	"jpop":              {"J-Pop", "World"},
	"k-pop":             {"K-Pop", "World"},
	"kpop":              {"K-Pop", "World"},
	"latin":             {"Latin", "World"},
}

// Resolve maps a raw genre string to its (parent, sub) pair. Unmapped
// genres pass through title-cased as their own parent.
func Resolve(raw string) (parent, sub string) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "Unknown", "Unknown"
	}
	if c, ok := aliases[key]; ok {
		return c.parent, c.name
	}
	t := Titlecase(raw)
	return t, t
}

// Titlecase upper-cases the first letter of each word, preserving the
// rest. Good enough for display of unmapped genre strings.
func Titlecase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
