package preview

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gopxl/beep/v2"

	"github.com/moodify-app/moodify/internal/audio"
)

// ErrInvalidSampleRate is returned when an output is created with a non-positive rate.
var ErrInvalidSampleRate = errors.New("preview: output sample rate must be positive")

// Output is the destination that graph outputs are connected to.
type Output interface {
	// SampleRate is the rate every graph is resampled to.
	SampleRate() beep.SampleRate
	// Play starts streaming s. It may block until s is drained or ctx is
	// cancelled.
	Play(ctx context.Context, s beep.Streamer) error
	// Stop disconnects whatever is playing.
	Stop() error
}

// renderChunk is the number of frames pulled per Stream call when rendering.
const renderChunk = 512

// WAVOutput renders the preview into a 16-bit WAV file instead of a device.
// Play blocks until the streamer is drained and the file is written.
type WAVOutput struct {
	path string
	rate beep.SampleRate
}

// NewWAVOutput creates an output that writes to path at the given rate.
func NewWAVOutput(path string, sampleRate int) (*WAVOutput, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	return &WAVOutput{path: path, rate: beep.SampleRate(sampleRate)}, nil
}

// SampleRate implements Output.
func (o *WAVOutput) SampleRate() beep.SampleRate {
	return o.rate
}

// Path returns the file the preview is written to.
func (o *WAVOutput) Path() string {
	return o.path
}

// Play implements Output. When ctx is cancelled the render stops at the
// next chunk and whatever was rendered so far is written.
func (o *WAVOutput) Play(ctx context.Context, s beep.Streamer) error {
	left := make([]float32, 0, renderChunk)
	right := make([]float32, 0, renderChunk)
	chunk := make([][2]float64, renderChunk)

	for ctx.Err() == nil {
		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			left = append(left, float32(frame[0]))
			right = append(right, float32(frame[1]))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}

	buf, err := audio.NewBuffer(int(o.rate), left, right)
	if err != nil {
		return err
	}

	f, err := os.Create(o.path)
	if err != nil {
		return fmt.Errorf("create preview file: %w", err)
	}
	if err := audio.EncodeWAV(f, buf); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Stop implements Output. Rendering is ended through the Play context, so
// there is nothing left to disconnect here.
func (o *WAVOutput) Stop() error {
	return nil
}
