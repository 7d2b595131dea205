// Package speaker plays previews through the default audio device.
//
// It is kept apart from package preview because the device backend needs
// cgo and the platform audio headers; only the command line imports it.
package speaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/moodify-app/moodify/internal/preview"
)

// bufferLatency is the device buffer size in time.
const bufferLatency = time.Second / 10

// Output is a preview.Output backed by beep/speaker.
type Output struct {
	rate   beep.SampleRate
	once   sync.Once
	opened bool
	err    error
}

var _ preview.Output = (*Output)(nil)

// New creates a device output. The device is opened on first Play.
func New(sampleRate int) (*Output, error) {
	if sampleRate <= 0 {
		return nil, preview.ErrInvalidSampleRate
	}
	return &Output{rate: beep.SampleRate(sampleRate)}, nil
}

// SampleRate implements preview.Output.
func (o *Output) SampleRate() beep.SampleRate {
	return o.rate
}

// Play implements preview.Output. It returns as soon as s is queued.
func (o *Output) Play(ctx context.Context, s beep.Streamer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.once.Do(func() {
		o.err = speaker.Init(o.rate, o.rate.N(bufferLatency))
		o.opened = o.err == nil
	})
	if o.err != nil {
		return fmt.Errorf("open audio device: %w", o.err)
	}
	speaker.Play(s)
	return nil
}

// Stop implements preview.Output.
func (o *Output) Stop() error {
	if o.opened {
		speaker.Clear()
	}
	return nil
}

// Close releases the audio device.
func (o *Output) Close() {
	if o.opened {
		speaker.Close()
	}
}
