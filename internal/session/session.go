// Package session holds the state of one user session: the selected vibe and
// link, the current transform result, the uploaded tracks and the preview
// mixer. Handlers receive a *Session instead of sharing globals.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/moodify-app/moodify/internal/api"
	"github.com/moodify-app/moodify/internal/link"
	"github.com/moodify-app/moodify/internal/preview"
	"github.com/moodify-app/moodify/internal/storage"
	"github.com/moodify-app/moodify/internal/track"
	"github.com/moodify-app/moodify/internal/vibe"
)

// Static errors for session operations.
var (
	// ErrMissingInput is returned when processing starts without a link or a vibe.
	ErrMissingInput = errors.New("session: missing link or vibe")
	// ErrNoResult is returned when there is no transformed audio to act on.
	ErrNoResult = errors.New("session: no transformed audio yet")
	// ErrNoTracks is returned when mixing or previewing without tracks.
	ErrNoTracks = errors.New("session: add at least one track")
	// ErrBusy is returned when a transform is already in flight.
	ErrBusy = errors.New("session: a request is already in progress")
	// ErrPreviewUnavailable is returned when the session has no preview output.
	ErrPreviewUnavailable = errors.New("session: preview is not available")
	// ErrNilClient is returned when a session is created without a backend client.
	ErrNilClient = errors.New("session: api client is required")
	// ErrNilStorage is returned when a session is created without storage.
	ErrNilStorage = errors.New("session: storage is required")
)

// MissingInputMessage is the text shown to the user for ErrMissingInput.
const MissingInputMessage = "Please enter a YouTube URL and select a vibe!"

// Share sheet text.
const (
	ShareTitle = "Check out this transformed audio!"
	ShareText  = "Listen to this cool audio transformation I made with Moodify!"
)

// Status is the transform lifecycle of a session.
type Status string

const (
	// StatusIdle means no result is shown.
	StatusIdle Status = "idle"
	// StatusLoading means a transform request is in flight.
	StatusLoading Status = "loading"
	// StatusReady means a result is available.
	StatusReady Status = "ready"
)

// Result is a transformed clip saved to storage.
type Result struct {
	// Path is where the blob was saved.
	Path string
	// ContentType is the media type reported by the backend.
	ContentType string
	// Size is the blob size in bytes.
	Size int
	// Vibe is the effect that produced the clip.
	Vibe vibe.Vibe
	// Link is the source link.
	Link string
}

// ShareInfo is what gets handed to a share target.
type ShareInfo struct {
	Title string
	Text  string
	URL   string
}

// Option configures a Session.
type Option func(*Session)

// WithAlerter sets where user-facing errors are shown.
func WithAlerter(a Alerter) Option {
	return func(s *Session) {
		if a != nil {
			s.alerter = a
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMixer enables local preview playback.
func WithMixer(m *preview.Mixer) Option {
	return func(s *Session) {
		s.mixer = m
	}
}

// WithLinkCheck toggles rejecting unrecognised links before any request.
func WithLinkCheck(enabled bool) Option {
	return func(s *Session) {
		s.linkCheck = enabled
	}
}

// Session is the state of one user session.
type Session struct {
	client    api.Client
	store     storage.Storage
	tracks    *track.Store
	mixer     *preview.Mixer
	alerter   Alerter
	logger    *slog.Logger
	linkCheck bool

	mu     sync.Mutex
	vibe   *vibe.Vibe
	link   string
	result *Result
	status Status
}

// New creates a session backed by client and store.
func New(client api.Client, store storage.Storage, opts ...Option) (*Session, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if store == nil {
		return nil, ErrNilStorage
	}

	s := &Session{
		client:    client,
		store:     store,
		tracks:    track.NewStore(),
		alerter:   discardAlerter{},
		logger:    slog.Default(),
		linkCheck: true,
		status:    StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handle shows err to the user. Nil errors are ignored.
func (s *Session) Handle(err error) {
	if err == nil {
		return
	}
	s.alerter.Alert(AlertMessage(err))
}

// SelectVibe makes v the selected vibe.
func (s *Session) SelectVibe(v vibe.Vibe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vibe = &v
}

// SetLink stores the media link, trimmed.
func (s *Session) SetLink(rawURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link = strings.TrimSpace(rawURL)
}

// Status returns the transform status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Result returns the current result, or nil.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	r := *s.result
	return &r
}

// Process sends the link and selected vibe to the backend and saves the
// returned clip. Any previous result is released. Failures are alerted.
func (s *Session) Process(ctx context.Context) (*Result, error) {
	res, err := s.process(ctx)
	if err != nil {
		s.Handle(err)
		return nil, err
	}
	return res, nil
}

func (s *Session) process(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.link == "" || s.vibe == nil {
		s.mu.Unlock()
		return nil, ErrMissingInput
	}
	if s.status == StatusLoading {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	rawURL, selected := s.link, *s.vibe
	previous := s.result
	s.result = nil
	s.status = StatusLoading
	s.mu.Unlock()

	s.revoke(ctx, previous)

	res, err := s.transform(ctx, rawURL, selected)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusIdle
		return nil, err
	}
	s.result = res
	s.status = StatusReady
	return res, nil
}

func (s *Session) transform(ctx context.Context, rawURL string, v vibe.Vibe) (*Result, error) {
	if s.linkCheck {
		if _, err := link.ExtractVideoID(rawURL); err != nil {
			return nil, err
		}
	}

	s.logger.Info("transforming audio",
		slog.String("url", rawURL),
		slog.String("effect", v.Effect),
	)

	blob, err := s.client.Transform(ctx, api.TransformRequest{URL: rawURL, EffectType: v.Effect})
	if err != nil {
		s.logger.Error("transform failed",
			slog.String("effect", v.Effect),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	path, err := s.store.SaveBlob(ctx, "transformed_audio"+blob.Extension(), bytes.NewReader(blob.Data))
	if err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	s.logger.Info("transform complete",
		slog.String("effect", v.Effect),
		slog.String("path", path),
		slog.Int("bytes", len(blob.Data)),
	)

	return &Result{
		Path:        path,
		ContentType: blob.ContentType,
		Size:        len(blob.Data),
		Vibe:        v,
		Link:        rawURL,
	}, nil
}

// Retry drops the current result and processes the same input again.
func (s *Session) Retry(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	previous := s.result
	s.result = nil
	if s.status == StatusReady {
		s.status = StatusIdle
	}
	s.mu.Unlock()

	s.revoke(ctx, previous)
	return s.Process(ctx)
}

// Download copies the current result to dst.
func (s *Session) Download(ctx context.Context, dst string) error {
	res := s.Result()
	if res == nil {
		return ErrNoResult
	}

	src, err := s.store.OpenBlob(ctx, res.Path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	if err := writeFile(dst, src); err != nil {
		return fmt.Errorf("download result: %w", err)
	}
	s.logger.Info("result downloaded", slog.String("path", dst))
	return nil
}

// Share publishes the current result and returns the share sheet content.
// Share failures are logged and returned but never alerted.
func (s *Session) Share(ctx context.Context) (*ShareInfo, error) {
	res := s.Result()
	if res == nil {
		return nil, ErrNoResult
	}

	src, err := s.store.OpenBlob(ctx, res.Path)
	if err != nil {
		s.logger.Warn("error sharing", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = src.Close() }()

	key := "shared/" + filepath.Base(res.Path)
	url, err := s.store.Publish(ctx, key, src, res.ContentType)
	if err != nil {
		s.logger.Warn("error sharing", slog.String("error", err.Error()))
		return nil, err
	}

	return &ShareInfo{Title: ShareTitle, Text: ShareText, URL: url}, nil
}

// Close stops the preview and releases every blob the session still holds.
func (s *Session) Close(ctx context.Context) error {
	if s.mixer != nil {
		_ = s.mixer.Stop()
	}
	s.mu.Lock()
	previous := s.result
	s.result = nil
	s.status = StatusIdle
	s.mu.Unlock()

	if previous == nil {
		return nil
	}
	return s.store.Revoke(ctx, previous.Path)
}

func (s *Session) revoke(ctx context.Context, r *Result) {
	if r == nil {
		return
	}
	if err := s.store.Revoke(ctx, r.Path); err != nil {
		s.logger.Warn("failed to release result",
			slog.String("path", r.Path),
			slog.String("error", err.Error()),
		)
	}
}

func writeFile(dst string, r io.Reader) error {
	f, err := os.Create(dst) // #nosec G304 - destination is chosen by the user
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return err
	}
	return f.Close()
}
