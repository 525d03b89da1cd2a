// Package catalog fetches the static song document the catalog is built
// from. The document is loaded once at startup and again only on
// explicit reload; the client never patches it.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/hibiki-dev/encore/internal/domain/song"
)

// record is one raw entry of the song document. Some documents use
// "title" instead of "name"; both are accepted.
type record struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Genre       string `json:"genre"`
	Charter     string `json:"charter"`
	Year        int    `json:"year"`
	SongLength  int    `json:"songlength"`
	Instruments string `json:"instruments"`
}

func (r record) toSong() song.Song {
	name := r.Name
	if name == "" {
		name = r.Title
	}
	return song.Song{
		ID:          r.ID,
		Name:        name,
		Artist:      r.Artist,
		Album:       r.Album,
		Genre:       r.Genre,
		Charter:     r.Charter,
		Year:        r.Year,
		Length:      time.Duration(r.SongLength) * time.Second,
		Instruments: r.Instruments,
	}
}

// Load fetches and parses the song document. HTTP(S) sources are fetched
// over the network; anything else is read as a local file. Failure is
// fatal for the browsing feature only, queue features are unaffected.
func Load(ctx context.Context, source string) ([]song.Song, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
		err = errors.Wrapf(err, "failed to read catalog file %s", source)
	}
	if err != nil {
		return nil, err
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog document")
	}

	songs := make([]song.Song, len(records))
	for i, r := range records {
		songs[i] = r.toSong()
	}
	return songs, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build catalog request")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch catalog from %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("catalog fetch returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog response")
	}
	return data, nil
}
