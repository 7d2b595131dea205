package session

import (
	"github.com/moodify-app/moodify/internal/preview"
	"github.com/moodify-app/moodify/internal/vibe"
)

// VibeOption is one entry of the vibe picker.
type VibeOption struct {
	vibe.Vibe
	Selected bool
}

// TrackRow is one row of the track list.
type TrackRow struct {
	ID         string
	Label      string
	Duration   float64
	Volume     int
	StartTime  float64
	TrimLength float64
}

// ViewModel is everything a front end needs to draw the session.
type ViewModel struct {
	Vibes     []VibeOption
	Link      string
	Loading   bool
	HasResult bool
	// ResultPath is the saved clip, when HasResult is set.
	ResultPath string
	// CanRetry and CanShare mirror the buttons shown with a result.
	CanRetry bool
	CanShare bool
	Tracks   []TrackRow
	Preview  preview.State
}

// View builds the current view model.
func (s *Session) View() ViewModel {
	s.mu.Lock()
	var vm ViewModel
	for _, v := range vibe.All() {
		vm.Vibes = append(vm.Vibes, VibeOption{
			Vibe:     v,
			Selected: s.vibe != nil && s.vibe.Effect == v.Effect,
		})
	}
	vm.Link = s.link
	vm.Loading = s.status == StatusLoading
	if s.result != nil {
		vm.HasResult = true
		vm.ResultPath = s.result.Path
		vm.CanRetry = true
		vm.CanShare = true
	}
	s.mu.Unlock()

	for _, t := range s.tracks.List() {
		vm.Tracks = append(vm.Tracks, TrackRow{
			ID:         t.ID,
			Label:      t.Label(),
			Duration:   t.Duration(),
			Volume:     t.Volume,
			StartTime:  t.StartTime,
			TrimLength: t.TrimLength,
		})
	}

	vm.Preview = preview.StateIdle
	if s.mixer != nil {
		vm.Preview = s.mixer.State()
	}
	return vm
}
