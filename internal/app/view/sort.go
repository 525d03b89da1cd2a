package view

import (
	"sort"
	"strings"

	"github.com/hibiki-dev/encore/internal/domain/song"
)

// Bucket is the primary boolean-derived sort field. Songs in the bucket
// sort before songs outside it (or after, when the direction is
// reversed); ordering within buckets is governed by the secondary field.
type Bucket int

const (
	BucketNone      Bucket = iota // No primary bucket, secondary field alone governs
	BucketFavorites               // Favorited songs first
	BucketQueued                  // Currently queued songs first
)

// String returns the bucket name used in persisted preferences.
func (b Bucket) String() string {
	switch b {
	case BucketFavorites:
		return "favorites"
	case BucketQueued:
		return "queued"
	default:
		return "none"
	}
}

// ParseBucket parses a persisted bucket name, defaulting to BucketNone.
func ParseBucket(name string) Bucket {
	switch name {
	case "favorites":
		return BucketFavorites
	case "queued":
		return BucketQueued
	default:
		return BucketNone
	}
}

// Field is a secondary sort field compared lexicographically.
type Field int

const (
	FieldArtist Field = iota
	FieldName
	FieldYear
)

// String returns the field name used in persisted preferences.
func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldYear:
		return "year"
	default:
		return "artist"
	}
}

// ParseField parses a persisted field name, defaulting to FieldArtist.
func ParseField(name string) Field {
	switch name {
	case "name":
		return FieldName
	case "year":
		return FieldYear
	default:
		return FieldArtist
	}
}

// Spec is the two-level sort specification. Directions are configurable
// per level independently.
type Spec struct {
	Primary       Bucket
	PrimaryDesc   bool // Reverses the bucket ordering
	Secondary     Field
	SecondaryDesc bool
}

// DefaultSpec sorts by artist ascending with no primary bucket.
func DefaultSpec() Spec {
	return Spec{Primary: BucketNone, Secondary: FieldArtist}
}

// Sort orders songs in place by the spec. inBucket resolves primary
// bucket membership for a song key and may be nil when Primary is
// BucketNone. The sort is stable so equal songs keep catalog order.
func (sp Spec) Sort(songs []song.Song, inBucket func(key string) bool) {
	sort.SliceStable(songs, func(i, j int) bool {
		if sp.Primary != BucketNone && inBucket != nil {
			bi, bj := inBucket(songs[i].Key()), inBucket(songs[j].Key())
			if bi != bj {
				if sp.PrimaryDesc {
					return bj
				}
				return bi
			}
		}

		less := sp.secondaryLess(songs[i], songs[j])
		if sp.SecondaryDesc {
			return sp.secondaryLess(songs[j], songs[i])
		}
		return less
	})
}

func (sp Spec) secondaryLess(a, b song.Song) bool {
	switch sp.Secondary {
	case FieldName:
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	case FieldYear:
		return a.Year < b.Year
	default:
		return strings.ToLower(a.Artist) < strings.ToLower(b.Artist)
	}
}
