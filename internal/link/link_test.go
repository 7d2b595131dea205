package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch link with extra params", "https://youtube.com/watch?v=abc123&t=42s", "abc123", false},
		{"mobile watch link", "https://m.youtube.com/watch?v=abc123", "abc123", false},
		{"embed link", "https://www.youtube.com/embed/abc123", "abc123", false},
		{"v link", "https://youtube.com/v/abc123", "abc123", false},
		{"surrounding whitespace", "  https://youtu.be/abc123  ", "abc123", false},
		{"watch without id", "https://www.youtube.com/watch", "", true},
		{"channel page", "https://www.youtube.com/@someone", "", true},
		{"other host", "https://vimeo.com/12345", "", true},
		{"empty", "", "", true},
		{"nested short path", "https://youtu.be/a/b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLink)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("https://youtu.be/abc"))
	assert.False(t, IsValid("not a url"))
}
