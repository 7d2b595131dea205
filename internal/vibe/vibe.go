// Package vibe holds the immutable catalog of effect presets offered to the user.
package vibe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVibe is returned when a lookup does not match any preset.
var ErrUnknownVibe = errors.New("vibe: unknown vibe")

// Vibe is a named audio effect preset sent to the server.
type Vibe struct {
	// Emoji is the symbol shown on the selection button.
	Emoji string `json:"emoji"`
	// Effect is the effect identifier sent as effect_type.
	Effect string `json:"effect_type"`
	// Name is the display name shown as a tooltip.
	Name string `json:"name"`
}

// String returns the emoji followed by the display name.
func (v Vibe) String() string {
	return v.Emoji + " " + v.Name
}

var catalog = [...]Vibe{
	{Emoji: "🌙", Effect: "slow_reverb", Name: "Dreamy"},
	{Emoji: "🎉", Effect: "energetic", Name: "Energetic"},
	{Emoji: "🖤", Effect: "dark", Name: "Dark"},
	{Emoji: "💖", Effect: "cute", Name: "Cute"},
	{Emoji: "😎", Effect: "cool", Name: "Cool"},
	{Emoji: "🌈", Effect: "happy", Name: "Happy"},
	{Emoji: "🔥", Effect: "intense", Name: "Intense"},
	{Emoji: "🎶", Effect: "melodic", Name: "Melodic"},
	{Emoji: "🌿", Effect: "chill", Name: "Chill"},
	{Emoji: "💤", Effect: "sleepy", Name: "Sleepy"},
}

// All returns a copy of the catalog in display order.
func All() []Vibe {
	out := make([]Vibe, len(catalog))
	copy(out, catalog[:])
	return out
}

// ByEffect looks up a vibe by its effect identifier.
func ByEffect(effect string) (Vibe, error) {
	for _, v := range catalog {
		if v.Effect == effect {
			return v, nil
		}
	}
	return Vibe{}, fmt.Errorf("%w: %q", ErrUnknownVibe, effect)
}

// ByEmoji looks up a vibe by its emoji.
func ByEmoji(emoji string) (Vibe, error) {
	for _, v := range catalog {
		if v.Emoji == emoji {
			return v, nil
		}
	}
	return Vibe{}, fmt.Errorf("%w: %q", ErrUnknownVibe, emoji)
}

// Parse accepts an effect identifier, an emoji, or a display name
// (case-insensitive).
func Parse(s string) (Vibe, error) {
	s = strings.TrimSpace(s)
	for _, v := range catalog {
		if s == v.Effect || s == v.Emoji || strings.EqualFold(s, v.Name) {
			return v, nil
		}
	}
	return Vibe{}, fmt.Errorf("%w: %q", ErrUnknownVibe, s)
}
