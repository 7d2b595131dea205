// Package preview plays a local preview of the multi-track mix before the
// real mix is requested from the backend.
//
// Each track gets its own playback graph, source -> gain -> output, built on
// gopxl/beep streamers. Graphs live for a single preview session only.
package preview

import "errors"

// State is the mixer's playback state.
type State string

const (
	// StateIdle means no graphs exist.
	StateIdle State = "IDLE"
	// StatePlaying means one graph per track is attached to the output.
	StatePlaying State = "PLAYING"
)

// ErrInvalidTransition is returned when a state change is not allowed.
var ErrInvalidTransition = errors.New("preview: invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[State][]State{
	StateIdle:    {StatePlaying},
	StatePlaying: {StateIdle},
}

// canTransition checks if a transition from one state to another is valid.
func canTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
