// Package id provides unique identifier generation for tracks.
package id

import "github.com/google/uuid"

// Prefix starts every track ID.
const Prefix = "track-"

// Generate creates a new unique track ID.
// Format: track-<uuid>
// Example: track-0b7a3f4e-5c1d-4e0a-9a57-3f1f8f2c6d10
func Generate() string {
	return Prefix + uuid.NewString()
}
