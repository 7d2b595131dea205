// Package link validates media links before they are sent for transformation.
package link

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidLink is returned when a link does not point at a YouTube video.
var ErrInvalidLink = errors.New("link: invalid YouTube URL")

// InvalidLinkMessage is the text shown to the user for ErrInvalidLink.
const InvalidLinkMessage = "Invalid YouTube URL"

// ExtractVideoID returns the YouTube video ID referenced by rawURL.
// Supported forms are youtu.be/<id>, youtube.com/watch?v=<id>,
// youtube.com/embed/<id> and youtube.com/v/<id>.
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", ErrInvalidLink
	}

	var id string
	switch u.Host {
	case "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"), strings.HasPrefix(u.Path, "/v/"):
			parts := strings.Split(u.Path, "/")
			if len(parts) > 2 {
				id = parts[2]
			}
		}
	}

	if id == "" || strings.Contains(id, "/") {
		return "", ErrInvalidLink
	}
	return id, nil
}

// IsValid reports whether rawURL references a YouTube video.
func IsValid(rawURL string) bool {
	_, err := ExtractVideoID(rawURL)
	return err == nil
}
