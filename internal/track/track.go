// Package track provides the Track entity: an uploaded audio file, its
// decoded samples and the mix settings the user attached to it.
package track

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moodify-app/moodify/internal/audio"
	"github.com/moodify-app/moodify/internal/track/id"
)

// DefaultVolume is the gain, in percent, of a freshly uploaded track.
const DefaultVolume = 100

// Static errors for track operations.
var (
	// ErrInvalidSelection is returned when a trim/split selection is out of bounds.
	ErrInvalidSelection = errors.New("track: invalid selection")
	// ErrInvalidVolume is returned when the volume is outside 0-100.
	ErrInvalidVolume = errors.New("track: volume must be between 0 and 100")
	// ErrInvalidOffset is returned when the start time or trim length is out of range.
	ErrInvalidOffset = errors.New("track: start time and trim length must fit the track")
)

// Track is an uploaded audio file plus its decoded samples.
type Track struct {
	// ID is the unique identifier for this track.
	ID string
	// Name is the display name, usually the file name.
	Name string
	// Path is the file the track was loaded from, if any.
	Path string
	// Data is the original encoded file content, uploaded on split and mix.
	Data []byte
	// Buffer holds the decoded samples.
	Buffer *audio.Buffer
	// Meta holds the file's tags, if it has any.
	Meta audio.Metadata
	// Volume is the mix gain in percent (0-100).
	Volume int
	// StartTime is the offset into the track, in seconds, where playback begins.
	StartTime float64
	// TrimLength is the played length in seconds; zero plays to the end.
	TrimLength float64
}

// New decodes data and creates a track with default mix settings.
func New(name string, data []byte) (*Track, error) {
	buf, err := audio.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	meta, err := audio.ReadMetadata(bytes.NewReader(data))
	if err != nil {
		// Tags are cosmetic; a broken tag block does not reject the file.
		meta = audio.Metadata{}
	}

	return &Track{
		ID:     id.Generate(),
		Name:   name,
		Data:   data,
		Buffer: buf,
		Meta:   meta,
		Volume: DefaultVolume,
	}, nil
}

// Load reads and decodes the file at path.
func Load(path string) (*Track, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}

	t, err := New(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	t.Path = path
	return t, nil
}

// Label returns the tag label if present, otherwise the file name without extension.
func (t *Track) Label() string {
	if l := t.Meta.Label(); l != "" {
		return l
	}
	return strings.TrimSuffix(t.Name, filepath.Ext(t.Name))
}

// Duration returns the decoded length in seconds.
func (t *Track) Duration() float64 {
	if t.Buffer == nil {
		return 0
	}
	return t.Buffer.Seconds()
}

// Window returns the [start, end) region, in seconds, that the mix settings select.
func (t *Track) Window() (start, end float64) {
	d := t.Duration()
	start = min(max(t.StartTime, 0), d)
	end = d
	if t.TrimLength > 0 {
		end = min(start+t.TrimLength, d)
	}
	return start, end
}

// SetMix validates and applies mix settings.
func (t *Track) SetMix(volume int, startTime, trimLength float64) error {
	if volume < 0 || volume > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidVolume, volume)
	}
	if startTime < 0 || trimLength < 0 || (t.Buffer != nil && startTime >= t.Duration()) {
		return fmt.Errorf("%w: start=%g trim=%g duration=%g", ErrInvalidOffset, startTime, trimLength, t.Duration())
	}
	t.Volume = volume
	t.StartTime = startTime
	t.TrimLength = trimLength
	return nil
}

// ValidateSelection checks that 0 <= start < end <= duration.
func (t *Track) ValidateSelection(start, end float64) error {
	if start < 0 || end <= start || end > t.Duration() {
		return fmt.Errorf("%w: [%g, %g] of %gs", ErrInvalidSelection, start, end, t.Duration())
	}
	return nil
}

// Clone returns a copy that shares the immutable sample and file data.
func (t *Track) Clone() *Track {
	c := *t
	return &c
}
