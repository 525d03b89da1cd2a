// Package song provides the Song domain entity and catalog normalization.
package song

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Song represents a single requestable song from the catalog.
// Once normalized a Song is immutable; the catalog is replaced wholesale
// on reload, never patched field by field.
type Song struct {
	ID          int           // Server-assigned ID (0 when the catalog is pre-queue/static)
	Name        string        // Song title (cleaned, original casing)
	Artist      string        // Artist name (cleaned, original casing)
	Album       string        // Album name
	Genre       string        // Raw genre string as uploaded
	ParentGenre string        // Canonical parent genre (derived)
	SubGenre    string        // Canonical sub genre (derived)
	Charter     string        // Chart author
	Year        int           // Release year
	Length      time.Duration // Song duration
	Instruments string        // Raw instrumentation descriptor, e.g. "guitar,bass,drums,vocals"
}

// Key returns the song's identity key. The server-assigned ID wins when
// present; the static pre-queue catalog falls back to the composite
// name|artist key.
func (s Song) Key() string {
	if s.ID != 0 {
		return "#" + strconv.Itoa(s.ID)
	}
	return CompositeKey(s.Name, s.Artist)
}

// CompositeKey builds the case-insensitive name|artist identity key.
// Inputs are cleaned before lowering so "Song (Live)" and "Song"
// collapse to the same key.
func CompositeKey(name, artist string) string {
	return strings.ToLower(CleanTitle(name)) + "|" + strings.ToLower(CleanTitle(artist))
}

// DisplayAlbum returns the album name or a fallback for missing data.
func (s Song) DisplayAlbum() string {
	if s.Album == "" {
		return "N/A"
	}
	return s.Album
}

// DisplayYear returns the year or a fallback for missing data.
func (s Song) DisplayYear() string {
	if s.Year == 0 {
		return "N/A"
	}
	return strconv.Itoa(s.Year)
}

// DisplayLength formats the duration as m:ss, or "N/A" when unknown.
func (s Song) DisplayLength() string {
	if s.Length <= 0 {
		return "N/A"
	}
	total := int(s.Length.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
