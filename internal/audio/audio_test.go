package audio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuffer(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		buf, err := NewBuffer(8000, []float32{0, 0.5}, []float32{1, -1})
		require.NoError(t, err)
		assert.Equal(t, 2, buf.NumChannels())
		assert.Equal(t, 2, buf.Frames())
	})

	t.Run("no channels", func(t *testing.T) {
		_, err := NewBuffer(8000)
		assert.ErrorIs(t, err, ErrNoChannels)
	})

	t.Run("mismatched channels", func(t *testing.T) {
		_, err := NewBuffer(8000, []float32{0}, []float32{0, 1})
		assert.ErrorIs(t, err, ErrChannelLength)
	})

	t.Run("bad sample rate", func(t *testing.T) {
		_, err := NewBuffer(0, []float32{0})
		assert.ErrorIs(t, err, ErrInvalidSampleRate)
	})
}

func TestBuffer_Duration(t *testing.T) {
	buf, err := NewBuffer(4, make([]float32, 10))
	require.NoError(t, err)

	assert.Equal(t, 2500*time.Millisecond, buf.Duration())
	assert.InDelta(t, 2.5, buf.Seconds(), 1e-9)
}

func TestBuffer_Channel(t *testing.T) {
	buf, err := NewBuffer(8000, []float32{0.1}, []float32{0.2})
	require.NoError(t, err)

	ch, err := buf.Channel(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.2}, ch)

	_, err = buf.Channel(2)
	assert.ErrorIs(t, err, ErrChannelOutOfRange)
}

func TestBuffer_Mono(t *testing.T) {
	buf, err := NewBuffer(8000, []float32{1, 0.5}, []float32{0, -0.5})
	require.NoError(t, err)

	assert.Equal(t, []float32{0.5, 0}, buf.Mono())

	single, err := NewBuffer(8000, []float32{0.25})
	require.NoError(t, err)
	mono := single.Mono()
	mono[0] = 1
	assert.Equal(t, float32(0.25), single.Channels[0][0], "Mono must not alias the source")
}

func TestBuffer_FrameAtAndSlice(t *testing.T) {
	buf, err := NewBuffer(10, []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)

	assert.Equal(t, 0, buf.FrameAt(-1))
	assert.Equal(t, 5, buf.FrameAt(0.5))
	assert.Equal(t, 10, buf.FrameAt(99))

	part := buf.Slice(2, 5)
	assert.Equal(t, []float32{2, 3, 4}, part.Channels[0])
	assert.Equal(t, 10, part.SampleRate)

	assert.Equal(t, 0, buf.Slice(8, 3).Frames())
	assert.Equal(t, 2, buf.Slice(8, 100).Frames())
}

func TestEncodeDecodeWAV(t *testing.T) {
	left := []float32{0, 0.5, -0.5, 0.25}
	right := []float32{1, -1, 0, 0.75}
	buf, err := NewBuffer(22050, left, right)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, EncodeWAV(f, buf))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatWAV, Sniff(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 22050, decoded.SampleRate)
	require.Equal(t, 2, decoded.NumChannels())
	require.Equal(t, 4, decoded.Frames())

	for i := range left {
		assert.InDelta(t, left[i], decoded.Channels[0][i], 1e-3)
		assert.InDelta(t, right[i], decoded.Channels[1][i], 1e-3)
	}
}

func TestEncodeWAV_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ErrorIs(t, EncodeWAV(f, &Buffer{SampleRate: 8000}), ErrNoChannels)
	assert.ErrorIs(t, EncodeWAV(f, &Buffer{Channels: [][]float32{{0}}}), ErrInvalidSampleRate)
}

func TestToInt16_Clips(t *testing.T) {
	assert.Equal(t, 32767, toInt16(2))
	assert.Equal(t, -32768, toInt16(-2))
	assert.Equal(t, 0, toInt16(0))
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyAudio)

	_, err = Decode([]byte("definitely not audio"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	truncated := append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, 4)...)
	_, err = Decode(truncated)
	assert.Error(t, err)
}

func TestSniff(t *testing.T) {
	assert.Equal(t, FormatWAV, Sniff([]byte("RIFF\x24\x00\x00\x00WAVEfmt ")))
	assert.Equal(t, FormatMP3, Sniff([]byte("ID3\x03\x00")))
	assert.Equal(t, FormatMP3, Sniff(nil))
}

func TestReadMetadata_NoTags(t *testing.T) {
	meta, err := ReadMetadata(bytes.NewReader(make([]byte, 256)))
	require.NoError(t, err)
	assert.Equal(t, Metadata{}, meta)
}

func TestMetadata_Label(t *testing.T) {
	assert.Equal(t, "Artist - Song", Metadata{Title: "Song", Artist: "Artist"}.Label())
	assert.Equal(t, "Song", Metadata{Title: "Song"}.Label())
	assert.Equal(t, "Artist", Metadata{Artist: "Artist"}.Label())
	assert.Equal(t, "", Metadata{}.Label())
}
