package waveform

import (
	"encoding/json"
	"fmt"
	"io"
)

// Peaks is the JSON export of a waveform, one min/max pair per pixel.
type Peaks struct {
	SampleRate      int      `json:"sample_rate"`
	SamplesPerPixel int      `json:"samples_per_pixel"`
	Length          int      `json:"length"`
	Data            []Column `json:"data"`
}

// NewPeaks computes the peaks export for samples at the given width.
func NewPeaks(samples []float32, sampleRate, width int) Peaks {
	cols := Columns(samples, width)
	spp := 0
	if width > 0 {
		spp = (len(samples) + width - 1) / width
	}
	return Peaks{
		SampleRate:      sampleRate,
		SamplesPerPixel: spp,
		Length:          len(cols),
		Data:            cols,
	}
}

// WriteJSON encodes p as indented JSON.
func (p Peaks) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("waveform: encode peaks: %w", err)
	}
	return nil
}
