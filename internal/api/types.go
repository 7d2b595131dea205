// Package api provides an HTTP client for the Moodify processing backend.
// The backend owns every audio transformation; this package only shapes
// requests and turns responses into blobs or errors.
package api

import (
	"fmt"
)

// TransformRequest is the JSON body of POST /api/transform.
type TransformRequest struct {
	// URL is the media link to transform.
	URL string `json:"url" validate:"required,url"`
	// EffectType is the vibe effect identifier.
	EffectType string `json:"effect_type" validate:"required"`
}

// SplitRequest describes a POST /api/split call.
type SplitRequest struct {
	// FileName is the name reported for the uploaded audio_file part.
	FileName string `validate:"required"`
	// Audio is the raw file content.
	Audio []byte `validate:"required,min=1"`
	// StartTime is the selection start in seconds.
	StartTime float64 `validate:"gte=0"`
	// EndTime is the selection end in seconds.
	EndTime float64 `validate:"gtfield=StartTime"`
}

// MixTrack is one track of a POST /api/mix call.
type MixTrack struct {
	// FileName is the name reported for the track_i part.
	FileName string `validate:"required"`
	// Audio is the raw file content.
	Audio []byte `validate:"required,min=1"`
	// Volume is the track gain in percent.
	Volume int `validate:"gte=0,lte=100"`
	// StartTime is the offset into the track in seconds.
	StartTime float64 `validate:"gte=0"`
	// TrimLength is the played length in seconds; zero means to the end.
	TrimLength float64 `validate:"gte=0"`
}

// MixRequest describes a POST /api/mix call.
type MixRequest struct {
	Tracks []MixTrack `validate:"required,min=1,dive"`
}

// HealthStatus is the response of GET /api/health.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Blob is an audio payload returned by the backend.
type Blob struct {
	// Data is the response body.
	Data []byte
	// ContentType is the response media type, e.g. audio/mpeg.
	ContentType string
}

// Extension returns a file extension matching the blob's content type.
func (b *Blob) Extension() string {
	switch b.ContentType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".mp3"
	}
}

// errorResponse is the JSON body the backend sends with non-2xx responses.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// APIError is returned for every non-2xx response.
// Its message is the server-provided error string, unchanged.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Message is the server "error" field, or a generic fallback.
	Message string
	// Details is the optional server "details" field.
	Details string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap classifies the error by status code.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode >= 500:
		return ErrServerError
	case e.StatusCode == 429:
		return ErrRateLimited
	default:
		return ErrRequestFailed
	}
}

// Describe returns the message with status code and details, for logs.
func (e *APIError) Describe() string {
	if e.Details == "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%d: %s (%s)", e.StatusCode, e.Message, e.Details)
}
