package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// Static errors for decoding.
var (
	// ErrEmptyAudio is returned when the input carries no samples.
	ErrEmptyAudio = errors.New("audio: no audio data")
	// ErrInvalidWAV is returned when a RIFF/WAVE header cannot be parsed.
	ErrInvalidWAV = errors.New("audio: invalid WAV file")
	// ErrUnsupportedFormat is returned when the input is neither WAV nor MP3.
	ErrUnsupportedFormat = errors.New("audio: unsupported format")
)

// Format identifies a container the package can decode.
type Format string

const (
	// FormatWAV is RIFF/WAVE PCM.
	FormatWAV Format = "wav"
	// FormatMP3 is MPEG-1/2 Layer III.
	FormatMP3 Format = "mp3"
)

// Sniff guesses the container from the first bytes of data.
func Sniff(data []byte) Format {
	if len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE" {
		return FormatWAV
	}
	return FormatMP3
}

// Decode turns a WAV or MP3 file into a Buffer.
func Decode(data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	switch Sniff(data) {
	case FormatWAV:
		return decodeWAV(data)
	default:
		buf, err := decodeMP3(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return buf, nil
	}
}

// decodeWAV reads the whole PCM payload with go-audio/wav.
func decodeWAV(data []byte) (*Buffer, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode WAV: %w", err)
	}

	return fromIntBuffer(pcm, int(decoder.BitDepth))
}

// fromIntBuffer de-interleaves and normalises an integer PCM buffer.
func fromIntBuffer(pcm *goaudio.IntBuffer, bitDepth int) (*Buffer, error) {
	if pcm == nil || pcm.Format == nil || len(pcm.Data) == 0 {
		return nil, ErrEmptyAudio
	}

	numChannels := pcm.Format.NumChannels
	if numChannels <= 0 {
		return nil, ErrNoChannels
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}

	frames := len(pcm.Data) / numChannels
	channels := make([][]float32, numChannels)
	for ch := range channels {
		channels[ch] = make([]float32, frames)
	}

	// 8-bit WAV is unsigned; everything wider is signed.
	scale := float32(int64(1) << (bitDepth - 1))
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			channels[ch][i] = float32(pcm.Data[i*numChannels+ch]-offset) / scale
		}
	}

	return NewBuffer(pcm.Format.SampleRate, channels...)
}

// decodeMP3 decodes with go-mp3, which always yields signed 16-bit
// little-endian stereo.
func decodeMP3(data []byte) (*Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create MP3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decode MP3: %w", err)
	}

	const bytesPerFrame = 4
	frames := len(pcm) / bytesPerFrame
	if frames == 0 {
		return nil, ErrEmptyAudio
	}

	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(pcm[i*bytesPerFrame:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i*bytesPerFrame+2:]))
		left[i] = float32(l) / 32768
		right[i] = float32(r) / 32768
	}

	return NewBuffer(decoder.SampleRate(), left, right)
}
