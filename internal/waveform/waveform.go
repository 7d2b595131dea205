// Package waveform renders decoded samples as a min/max waveform image.
package waveform

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
)

// ErrInvalidDimensions is returned when the target width or height is not positive.
var ErrInvalidDimensions = errors.New("waveform: width and height must be positive")

// Column is the sample range covered by one pixel column.
type Column struct {
	Min float32 `json:"min"`
	Max float32 `json:"max"`
}

// Segment is the vertical span drawn for one column. Bottom is exclusive.
type Segment struct {
	X      int `json:"x"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Options configures rendering.
type Options struct {
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
}

// DefaultOptions returns an 800x120 white-on-dark canvas.
func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     120,
		Background: color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff},
		Foreground: color.RGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff},
	}
}

// Waveform is a rendered image plus the geometry that produced it.
type Waveform struct {
	Image    *image.RGBA
	Columns  []Column
	Segments []Segment
}

// Columns samples min/max pairs for width pixel columns. Each column covers
// ceil(len(samples)/width) samples; columns past the end are flat at zero.
// NaN samples are ignored.
// Empty input or non-positive width yields no columns.
func Columns(samples []float32, width int) []Column {
	n := len(samples)
	if n == 0 || width <= 0 {
		return nil
	}

	step := (n + width - 1) / width
	cols := make([]Column, width)
	for i := range cols {
		start := i * step
		if start >= n {
			continue
		}
		end := min(start+step, n)

		// NaN samples are skipped; a column with nothing else stays at zero.
		var lo, hi float32
		seeded := false
		for _, s := range samples[start:end] {
			switch {
			case math.IsNaN(float64(s)):
			case !seeded:
				lo, hi, seeded = s, s, true
			case s < lo:
				lo = s
			case s > hi:
				hi = s
			}
		}
		cols[i] = Column{Min: lo, Max: hi}
	}
	return cols
}

// Segments maps columns onto a canvas of the given height. Each segment spans
// [center + min*amp, center + max*amp] with amp = height/2, clamped to the
// canvas and at least one pixel tall.
func Segments(cols []Column, height int) []Segment {
	if len(cols) == 0 || height <= 0 {
		return nil
	}

	amp := float64(height) / 2
	segs := make([]Segment, len(cols))
	for x, c := range cols {
		top := clamp(int(amp+float64(c.Min)*amp), 0, height-1)
		bottom := clamp(int(amp+float64(c.Max)*amp), 0, height)
		if bottom <= top {
			bottom = top + 1
		}
		segs[x] = Segment{X: x, Top: top, Bottom: bottom}
	}
	return segs
}

// Render draws samples onto a new image. An empty buffer produces a blank
// canvas with no segments.
func Render(samples []float32, opts Options) (*Waveform, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, opts.Width, opts.Height)
	}
	defaults := DefaultOptions()
	if opts.Background == nil {
		opts.Background = defaults.Background
	}
	if opts.Foreground == nil {
		opts.Foreground = defaults.Foreground
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	cols := Columns(samples, opts.Width)
	segs := Segments(cols, opts.Height)

	fg := image.NewUniform(opts.Foreground)
	for _, s := range segs {
		draw.Draw(img, image.Rect(s.X, s.Top, s.X+1, s.Bottom), fg, image.Point{}, draw.Src)
	}

	return &Waveform{Image: img, Columns: cols, Segments: segs}, nil
}

// EncodePNG writes the rendered image as PNG.
func (w *Waveform) EncodePNG(out io.Writer) error {
	if err := png.Encode(out, w.Image); err != nil {
		return fmt.Errorf("waveform: encode PNG: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
