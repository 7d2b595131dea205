package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/dhowden/tag"
)

// Metadata holds the tag fields shown next to a track.
type Metadata struct {
	Title  string
	Artist string
	Album  string
	// Format names the tag format, e.g. ID3v2.3; empty when no tags exist.
	Format string
}

// Label returns "Artist - Title", or whichever part is present.
func (m Metadata) Label() string {
	switch {
	case m.Artist != "" && m.Title != "":
		return m.Artist + " - " + m.Title
	case m.Title != "":
		return m.Title
	default:
		return m.Artist
	}
}

// ReadMetadata reads ID3/MP4/FLAC/OGG tags. A file without tags yields
// empty Metadata and no error.
func ReadMetadata(r io.ReadSeeker) (Metadata, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return Metadata{}, nil
		}
		return Metadata{}, fmt.Errorf("audio: read tags: %w", err)
	}

	return Metadata{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
		Format: string(m.Format()),
	}, nil
}
