package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM audio format tag.
const wavFormatPCM = 1

// EncodeWAV writes b as 16-bit PCM WAV. Samples outside [-1, 1] are clipped.
func EncodeWAV(w io.WriteSeeker, b *Buffer) error {
	numChannels := b.NumChannels()
	if numChannels == 0 {
		return ErrNoChannels
	}
	if b.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	frames := b.Frames()
	pcm := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: numChannels,
			SampleRate:  b.SampleRate,
		},
		Data:           make([]int, frames*numChannels),
		SourceBitDepth: 16,
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			pcm.Data[i*numChannels+ch] = toInt16(b.Channels[ch][i])
		}
	}

	encoder := wav.NewEncoder(w, b.SampleRate, 16, numChannels, wavFormatPCM)
	if err := encoder.Write(pcm); err != nil {
		return fmt.Errorf("audio: encode WAV: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("audio: close WAV encoder: %w", err)
	}
	return nil
}

func toInt16(s float32) int {
	v := int(s * 32767)
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}
