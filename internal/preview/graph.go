package preview

import (
	"errors"
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"github.com/moodify-app/moodify/internal/audio"
	"github.com/moodify-app/moodify/internal/track"
)

// Static errors for graph construction.
var (
	// ErrNoBuffer is returned when a track has no decoded samples.
	ErrNoBuffer = errors.New("preview: track has no decoded buffer")
	// ErrEmptyWindow is returned when the start offset leaves nothing to play.
	ErrEmptyWindow = errors.New("preview: nothing to play after start offset")
	// ErrInvalidVolume is returned when the gain percentage is negative.
	ErrInvalidVolume = errors.New("preview: volume must not be negative")
)

// resampleQuality is the beep resampler quality used when a track's rate
// differs from the output rate.
const resampleQuality = 4

// Graph is the playback graph of one track: source -> gain -> output.
type Graph struct {
	// TrackID identifies the track the graph plays.
	TrackID string
	// Frames is the graph length in output frames.
	Frames int

	source *bufferSource
	gain   *effects.Gain
	out    beep.Streamer
}

// newGraph builds the graph for t at the output sample rate.
func newGraph(t *track.Track, rate beep.SampleRate) (*Graph, error) {
	if t.Buffer == nil || t.Buffer.Frames() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBuffer, t.ID)
	}
	if t.Volume < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVolume, t.Volume)
	}

	startSec, endSec := t.Window()
	start, end := t.Buffer.FrameAt(startSec), t.Buffer.FrameAt(endSec)
	if end <= start {
		return nil, fmt.Errorf("%w: %s starts at %gs", ErrEmptyWindow, t.ID, startSec)
	}

	src := newBufferSource(t.Buffer, start, end)
	gain := &effects.Gain{Streamer: src, Gain: GainFor(t.Volume)}

	g := &Graph{
		TrackID: t.ID,
		source:  src,
		gain:    gain,
		out:     gain,
		Frames:  end - start,
	}

	srcRate := beep.SampleRate(t.Buffer.SampleRate)
	if srcRate != rate {
		g.out = beep.Resample(resampleQuality, srcRate, rate, gain)
		g.Frames = int(float64(end-start) * float64(rate) / float64(srcRate))
	}

	return g, nil
}

// Streamer returns the graph's output node.
func (g *Graph) Streamer() beep.Streamer {
	return g.out
}

// GainFor converts a percentage into the effects.Gain factor, which scales
// samples by 1+Gain.
func GainFor(percent int) float64 {
	return float64(percent)/100 - 1
}

// bufferSource streams frames [pos, end) of a decoded buffer.
// Mono buffers are duplicated to both output channels.
type bufferSource struct {
	buf *audio.Buffer
	pos int
	end int
}

func newBufferSource(buf *audio.Buffer, start, end int) *bufferSource {
	return &bufferSource{buf: buf, pos: start, end: end}
}

// Stream implements beep.Streamer.
func (s *bufferSource) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= s.end {
		return 0, false
	}

	left := s.buf.Channels[0]
	right := left
	if len(s.buf.Channels) > 1 {
		right = s.buf.Channels[1]
	}

	for n < len(samples) && s.pos < s.end {
		samples[n][0] = float64(left[s.pos])
		samples[n][1] = float64(right[s.pos])
		n++
		s.pos++
	}
	return n, true
}

// Err implements beep.Streamer.
func (s *bufferSource) Err() error {
	return nil
}
