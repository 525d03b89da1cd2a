package song

import (
	"regexp"
	"strings"

	"github.com/hibiki-dev/encore/internal/domain/genre"
)

// Qualifier patterns stripped from titles and artists before identity
// comparison. Covers parentheticals, brackets and trailing dash
// qualifiers such as "- 2011 Remaster" or "- Live".
var qualifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s*\([^)]*\)`),                       // "(Live)", "(Remastered 2023)"
	regexp.MustCompile(`\s*\[[^\]]*\]`),                      // "[Remastered]"
	regexp.MustCompile(`(?i)\s*-\s*\d{4}\s+remaster(ed)?$`),  // "- 2011 Remaster"
	regexp.MustCompile(`(?i)\s*-\s*remaster(ed)?(\sversion)?$`),
	regexp.MustCompile(`(?i)\s*-\s*live$`),
	regexp.MustCompile(`(?i)\s*-\s*radio\s+edit$`),
	regexp.MustCompile(`(?i)\s*-\s*single\s+version$`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanTitle strips parenthetical/bracketed qualifiers and trailing dash
// qualifiers, then collapses whitespace. Casing is preserved; callers
// lower-case for comparison only.
func CleanTitle(s string) string {
	for _, p := range qualifierPatterns {
		s = p.ReplaceAllString(s, "")
	}
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, " -")
}

// NormalizeCatalog cleans raw song records into the canonical catalog.
//
// Records are copied before mutation so the raw source is never aliased.
// A record is excluded entirely when its title or artist is empty after
// cleaning. Duplicates by composite name|artist key are dropped silently,
// first occurrence wins. Parent/sub genre fields are derived from the raw
// genre string via the alias table.
func NormalizeCatalog(raw []Song) []Song {
	catalog := make([]Song, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, r := range raw {
		s := r
		s.Name = CleanTitle(s.Name)
		s.Artist = CleanTitle(s.Artist)
		if s.Name == "" || s.Artist == "" {
			continue
		}

		key := strings.ToLower(s.Name) + "|" + strings.ToLower(s.Artist)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		s.ParentGenre, s.SubGenre = genre.Resolve(s.Genre)
		catalog = append(catalog, s)
	}

	return catalog
}

// Labels projects the catalog onto its genre labels for aggregation.
func Labels(catalog []Song) []genre.Label {
	labels := make([]genre.Label, len(catalog))
	for i, s := range catalog {
		labels[i] = genre.Label{Parent: s.ParentGenre, Sub: s.SubGenre}
	}
	return labels
}
