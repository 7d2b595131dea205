// Package audio provides decoded sample buffers and the codecs used to
// produce them. Decoding and encoding are delegated to go-audio and go-mp3;
// this package only moves samples between their representations.
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Static errors for buffer operations.
var (
	// ErrNoChannels is returned when a buffer is built without channel data.
	ErrNoChannels = errors.New("audio: buffer has no channels")
	// ErrChannelLength is returned when channels have different lengths.
	ErrChannelLength = errors.New("audio: channels differ in length")
	// ErrInvalidSampleRate is returned when the sample rate is not positive.
	ErrInvalidSampleRate = errors.New("audio: sample rate must be positive")
	// ErrChannelOutOfRange is returned when a channel index does not exist.
	ErrChannelOutOfRange = errors.New("audio: channel out of range")
)

// Buffer holds decoded, de-interleaved samples in [-1, 1].
type Buffer struct {
	// SampleRate is the number of frames per second.
	SampleRate int
	// Channels holds one sample slice per channel, all of equal length.
	Channels [][]float32
}

// NewBuffer validates channels and wraps them in a Buffer.
func NewBuffer(sampleRate int, channels ...[]float32) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	for _, ch := range channels[1:] {
		if len(ch) != len(channels[0]) {
			return nil, ErrChannelLength
		}
	}
	return &Buffer{SampleRate: sampleRate, Channels: channels}, nil
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// Frames returns the number of sample frames.
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Seconds returns the playback length in seconds.
func (b *Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Channel returns the samples of channel i.
func (b *Buffer) Channel(i int) ([]float32, error) {
	if i < 0 || i >= len(b.Channels) {
		return nil, fmt.Errorf("%w: %d of %d", ErrChannelOutOfRange, i, len(b.Channels))
	}
	return b.Channels[i], nil
}

// Mono returns the average of all channels.
func (b *Buffer) Mono() []float32 {
	frames := b.Frames()
	if len(b.Channels) == 1 {
		out := make([]float32, frames)
		copy(out, b.Channels[0])
		return out
	}

	out := make([]float32, frames)
	scale := 1 / float32(len(b.Channels))
	for _, ch := range b.Channels {
		for i, s := range ch {
			out[i] += s * scale
		}
	}
	return out
}

// FrameAt converts a time in seconds to a frame index clamped to [0, Frames()].
func (b *Buffer) FrameAt(seconds float64) int {
	f := int(math.Round(seconds * float64(b.SampleRate)))
	if f < 0 {
		return 0
	}
	if f > b.Frames() {
		return b.Frames()
	}
	return f
}

// Slice returns a buffer sharing the frames [start, end), clamped to the buffer.
func (b *Buffer) Slice(start, end int) *Buffer {
	frames := b.Frames()
	start = max(0, min(start, frames))
	end = max(start, min(end, frames))

	channels := make([][]float32, len(b.Channels))
	for i, ch := range b.Channels {
		channels[i] = ch[start:end]
	}
	return &Buffer{SampleRate: b.SampleRate, Channels: channels}
}
