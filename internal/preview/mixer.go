package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gopxl/beep/v2"

	"github.com/moodify-app/moodify/internal/track"
)

// Static errors for mixer operations.
var (
	// ErrAlreadyPlaying is returned by Start while a preview is running.
	ErrAlreadyPlaying = errors.New("preview: already playing")
	// ErrNoTracks is returned by Start when there is nothing to play.
	ErrNoTracks = errors.New("preview: no tracks to play")
	// ErrNilOutput is returned when a mixer is created without an output.
	ErrNilOutput = errors.New("preview: output is required")
)

// Mixer owns the playback graphs of one preview session.
// All methods are safe for concurrent use.
type Mixer struct {
	out    Output
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	graphs  []*Graph
	dest    *sink
	done    chan struct{}
	cancel  context.CancelFunc
	session uint64
}

// NewMixer creates an idle mixer that plays into out.
func NewMixer(out Output, logger *slog.Logger) (*Mixer, error) {
	if out == nil {
		return nil, ErrNilOutput
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mixer{
		out:    out,
		logger: logger,
		state:  StateIdle,
	}, nil
}

// Start builds one graph per track and connects them all to the output.
// Each track plays from its start time for its trim length at its volume.
// If any graph cannot be built, the graphs built so far are released and
// the mixer stays idle.
//
// The output is driven without holding the mixer lock, so Stop can end a
// blocking render. Cancelling ctx also ends the render, but the graphs stay
// connected until Stop.
func (m *Mixer) Start(ctx context.Context, tracks []*track.Track) error {
	m.mu.Lock()

	if m.state == StatePlaying {
		m.mu.Unlock()
		return ErrAlreadyPlaying
	}
	if len(tracks) == 0 {
		m.mu.Unlock()
		return ErrNoTracks
	}

	rate := m.out.SampleRate()
	graphs := make([]*Graph, 0, len(tracks))
	longest := 0
	for _, t := range tracks {
		g, err := newGraph(t, rate)
		if err != nil {
			m.release()
			m.mu.Unlock()
			return fmt.Errorf("build graph for %s: %w", t.Label(), err)
		}
		graphs = append(graphs, g)
		longest = max(longest, g.Frames)
	}

	if !canTransition(m.state, StatePlaying) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, StatePlaying)
	}

	dest := &sink{}
	for _, g := range graphs {
		dest.Add(g.Streamer())
	}

	playCtx, cancel := context.WithCancel(ctx)
	m.session++
	session := m.session
	m.graphs = graphs
	m.dest = dest
	m.done = make(chan struct{})
	m.cancel = cancel
	m.state = StatePlaying
	m.mu.Unlock()

	m.logger.Info("preview started",
		slog.Int("tracks", len(graphs)),
		slog.Int("sample_rate", int(rate)),
		slog.Int("frames", longest),
	)

	// The callback runs on the output's goroutine, which may hold its own
	// lock, so the state change is handed off.
	stream := beep.Seq(
		beep.Take(longest, dest),
		beep.Callback(func() { go m.finished(session) }),
	)
	if err := m.out.Play(playCtx, stream); err != nil {
		m.mu.Lock()
		if m.session == session && m.state == StatePlaying {
			m.release()
		}
		m.mu.Unlock()
		return fmt.Errorf("play preview: %w", err)
	}
	return nil
}

// Stop disconnects and releases every graph. Stopping an idle mixer is a no-op.
func (m *Mixer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePlaying {
		return nil
	}
	if err := m.out.Stop(); err != nil {
		m.logger.Warn("failed to stop output", slog.String("error", err.Error()))
	}
	m.release()
	m.logger.Info("preview stopped")
	return nil
}

// Toggle stops a running preview or starts a new one, and returns the new state.
func (m *Mixer) Toggle(ctx context.Context, tracks []*track.Track) (State, error) {
	if m.State() == StatePlaying {
		return StateIdle, m.Stop()
	}
	if err := m.Start(ctx, tracks); err != nil {
		return StateIdle, err
	}
	return StatePlaying, nil
}

// State returns the current playback state.
func (m *Mixer) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ActiveGraphs returns the number of graphs currently connected.
func (m *Mixer) ActiveGraphs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.graphs)
}

// Done returns a channel closed when the current preview ends, either by
// playing to the end or by Stop. It is already closed when idle.
func (m *Mixer) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return m.done
}

// finished is called once the longest graph has played out.
func (m *Mixer) finished(session uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != session || m.state != StatePlaying {
		return
	}
	m.release()
	m.logger.Info("preview finished")
}

// release drops all graphs and returns to idle. Callers hold m.mu.
func (m *Mixer) release() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.dest != nil {
		m.dest.Clear()
	}
	m.graphs = nil
	m.dest = nil
	m.state = StateIdle
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
}

// sink is the mixing node every graph is connected to. The output streams
// from it on its own goroutine while Stop may clear it, so access is locked.
type sink struct {
	mu  sync.Mutex
	mix beep.Mixer
}

func (s *sink) Add(streamers ...beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mix.Add(streamers...)
}

func (s *sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mix.Clear()
}

// Stream implements beep.Streamer.
func (s *sink) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mix.Stream(samples)
}

// Err implements beep.Streamer.
func (s *sink) Err() error {
	return nil
}
