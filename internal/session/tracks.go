package session

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/moodify-app/moodify/internal/api"
	"github.com/moodify-app/moodify/internal/preview"
	"github.com/moodify-app/moodify/internal/track"
)

// AddTrack loads and decodes the file at path and appends it to the session.
func (s *Session) AddTrack(path string) (*track.Track, error) {
	t, err := track.Load(path)
	if err != nil {
		s.Handle(err)
		return nil, err
	}
	s.tracks.Add(t)

	s.logger.Info("track added",
		slog.String("track_id", t.ID),
		slog.String("name", t.Name),
		slog.Float64("duration", t.Duration()),
	)
	return t, nil
}

// Tracks returns the session's tracks in upload order.
func (s *Session) Tracks() []*track.Track {
	return s.tracks.List()
}

// RemoveTrack destroys a track. A running preview is stopped first so no
// graph outlives its track.
func (s *Session) RemoveTrack(id string) error {
	if _, err := s.tracks.Get(id); err != nil {
		return err
	}
	if s.mixer != nil && s.mixer.State() == preview.StatePlaying {
		if err := s.mixer.Stop(); err != nil {
			return err
		}
	}
	return s.tracks.Remove(id)
}

// SetTrackMix sets a track's volume, start offset and trim length.
func (s *Session) SetTrackMix(id string, volume int, startTime, trimLength float64) error {
	err := s.tracks.Update(id, func(t *track.Track) error {
		return t.SetMix(volume, startTime, trimLength)
	})
	if err != nil {
		s.Handle(err)
	}
	return err
}

// Split asks the backend for the [start, end] selection of a track and
// saves it. It returns the saved path.
func (s *Session) Split(ctx context.Context, id string, start, end float64) (string, error) {
	path, err := s.split(ctx, id, start, end)
	if err != nil {
		s.Handle(err)
		return "", err
	}
	return path, nil
}

func (s *Session) split(ctx context.Context, id string, start, end float64) (string, error) {
	t, err := s.tracks.Get(id)
	if err != nil {
		return "", err
	}
	if err := t.ValidateSelection(start, end); err != nil {
		return "", err
	}

	blob, err := s.client.Split(ctx, api.SplitRequest{
		FileName:  t.Name,
		Audio:     t.Data,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return "", err
	}

	path, err := s.store.SaveBlob(ctx, "split_"+t.Label()+blob.Extension(), bytes.NewReader(blob.Data))
	if err != nil {
		return "", fmt.Errorf("save split: %w", err)
	}

	s.logger.Info("track split",
		slog.String("track_id", id),
		slog.Float64("start", start),
		slog.Float64("end", end),
		slog.String("path", path),
	)
	return path, nil
}

// Mix sends every track with its mix settings to the backend and saves the
// mixed clip. It returns the saved path.
func (s *Session) Mix(ctx context.Context) (string, error) {
	path, err := s.mix(ctx)
	if err != nil {
		s.Handle(err)
		return "", err
	}
	return path, nil
}

func (s *Session) mix(ctx context.Context) (string, error) {
	tracks := s.tracks.List()
	if len(tracks) == 0 {
		return "", ErrNoTracks
	}

	req := api.MixRequest{Tracks: make([]api.MixTrack, 0, len(tracks))}
	for _, t := range tracks {
		req.Tracks = append(req.Tracks, api.MixTrack{
			FileName:   t.Name,
			Audio:      t.Data,
			Volume:     t.Volume,
			StartTime:  t.StartTime,
			TrimLength: t.TrimLength,
		})
	}

	blob, err := s.client.Mix(ctx, req)
	if err != nil {
		return "", err
	}

	path, err := s.store.SaveBlob(ctx, "mixed_audio"+blob.Extension(), bytes.NewReader(blob.Data))
	if err != nil {
		return "", fmt.Errorf("save mix: %w", err)
	}

	s.logger.Info("tracks mixed",
		slog.Int("tracks", len(tracks)),
		slog.String("path", path),
	)
	return path, nil
}

// StartPreview plays every track locally with its mix settings. With a
// blocking output it returns once the preview is rendered, stopped, or ctx
// is cancelled.
func (s *Session) StartPreview(ctx context.Context) error {
	err := s.startPreview(ctx)
	if err != nil {
		s.Handle(err)
	}
	return err
}

func (s *Session) startPreview(ctx context.Context) error {
	if s.mixer == nil {
		return ErrPreviewUnavailable
	}
	tracks := s.tracks.List()
	if len(tracks) == 0 {
		return ErrNoTracks
	}
	return s.mixer.Start(ctx, tracks)
}

// StopPreview stops local playback. It is a no-op when nothing plays.
func (s *Session) StopPreview() error {
	if s.mixer == nil {
		return nil
	}
	return s.mixer.Stop()
}

// TogglePreview starts or stops local playback and returns the new state.
func (s *Session) TogglePreview(ctx context.Context) (preview.State, error) {
	if s.mixer == nil {
		s.Handle(ErrPreviewUnavailable)
		return preview.StateIdle, ErrPreviewUnavailable
	}
	if s.mixer.State() == preview.StatePlaying {
		return preview.StateIdle, s.mixer.Stop()
	}
	if err := s.StartPreview(ctx); err != nil {
		return preview.StateIdle, err
	}
	return preview.StatePlaying, nil
}

// PreviewDone returns a channel closed when the running preview ends.
func (s *Session) PreviewDone() <-chan struct{} {
	if s.mixer == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return s.mixer.Done()
}
