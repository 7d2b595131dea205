package track

import (
	"errors"
	"sync"
)

// ErrTrackNotFound is returned when a track cannot be found by ID.
var ErrTrackNotFound = errors.New("track not found")

// Store is an ordered in-memory collection of tracks.
// It uses a RWMutex because preview playback reads tracks from its own goroutine.
type Store struct {
	mu     sync.RWMutex
	order  []string
	tracks map[string]*Track
}

// NewStore creates an empty track store.
func NewStore() *Store {
	return &Store{
		tracks: make(map[string]*Track),
	}
}

// Add appends a track. Adding an existing ID replaces it in place.
func (s *Store) Add(t *Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracks[t.ID]; !ok {
		s.order = append(s.order, t.ID)
	}
	s.tracks[t.ID] = t.Clone()
}

// Get returns a copy of the track with the given ID.
func (s *Store) Get(id string) (*Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tracks[id]
	if !ok {
		return nil, ErrTrackNotFound
	}
	return t.Clone(), nil
}

// Update applies fn to the stored track.
func (s *Store) Update(id string, fn func(*Track) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tracks[id]
	if !ok {
		return ErrTrackNotFound
	}
	c := t.Clone()
	if err := fn(c); err != nil {
		return err
	}
	s.tracks[id] = c
	return nil
}

// List returns copies of all tracks in upload order.
func (s *Store) List() []*Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Track, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tracks[id].Clone())
	}
	return out
}

// Len returns the number of tracks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Remove deletes a track.
// Returns ErrTrackNotFound if the track does not exist.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracks[id]; !ok {
		return ErrTrackNotFound
	}
	delete(s.tracks, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
