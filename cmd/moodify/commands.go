package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/moodify-app/moodify/internal/bootstrap"
	"github.com/moodify-app/moodify/internal/config"
	"github.com/moodify-app/moodify/internal/preview"
	"github.com/moodify-app/moodify/internal/preview/speaker"
	"github.com/moodify-app/moodify/internal/session"
	"github.com/moodify-app/moodify/internal/track"
	"github.com/moodify-app/moodify/internal/vibe"
	"github.com/moodify-app/moodify/internal/waveform"
)

// Static errors for command line handling.
var (
	errBadTrackSpec = errors.New("invalid track spec")
	errMissingFlag  = errors.New("missing required flag")
	errNoOutput     = errors.New("preview needs -o or -speaker")
)

type app struct {
	cfg    *config.Config
	deps   *bootstrap.Dependencies
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer

	// alerted is set once a message has been shown through the alerter.
	alerted bool
}

func (a *app) newSession(out preview.Output) (*session.Session, error) {
	return a.deps.NewSession(out, session.AlerterFunc(func(msg string) {
		a.alerted = true
		fmt.Fprintln(a.stderr, msg)
	}))
}

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commandOrder = []string{"vibes", "health", "transform", "split", "mix", "waveform", "preview", "share"}

var commands = map[string]command{
	"vibes":     {"list the available vibes", runVibes},
	"health":    {"check the processing backend", runHealth},
	"transform": {"transform a link with a vibe", runTransform},
	"split":     {"cut a selection out of a track", runSplit},
	"mix":       {"mix tracks on the backend", runMix},
	"waveform":  {"render a track's waveform", runWaveform},
	"preview":   {"play a local preview of the mix", runPreview},
	"share":     {"publish a file and print its share link", runShare},
}

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func runVibes(_ context.Context, a *app, _ []string) error {
	for _, v := range vibe.All() {
		fmt.Fprintf(a.stdout, "%s  %-12s %s\n", v.Emoji, v.Effect, v.Name)
	}
	return nil
}

func runHealth(ctx context.Context, a *app, _ []string) error {
	status, err := a.deps.Client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", status.Status, status.Message)
	return nil
}

func runTransform(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "transform")
	rawURL := fs.String("url", "", "YouTube link to transform")
	vibeName := fs.String("vibe", "", "vibe effect, emoji or name")
	out := fs.String("o", "", "write the result to this file")
	share := fs.Bool("share", false, "publish the result and print a share link")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.newSession(nil)
	if err != nil {
		return err
	}
	s.SetLink(*rawURL)
	if *vibeName != "" {
		v, err := vibe.Parse(*vibeName)
		if err != nil {
			return err
		}
		s.SelectVibe(v)
	}

	res, err := s.Process(ctx)
	if err != nil {
		return err
	}

	if *share {
		info, err := s.Share(ctx)
		if err != nil {
			return fmt.Errorf("share: %w", err)
		}
		printShare(a.stdout, info)
	}

	if *out == "" {
		fmt.Fprintln(a.stdout, res.Path)
		return nil
	}
	if err := s.Download(ctx, *out); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, *out)
	return s.Close(ctx)
}

func runSplit(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "split")
	in := fs.String("in", "", "track to split")
	start := fs.Float64("start", 0, "selection start in seconds")
	end := fs.Float64("end", 0, "selection end in seconds")
	out := fs.String("o", "", "write the selection to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("%w: -in", errMissingFlag)
	}

	s, err := a.newSession(nil)
	if err != nil {
		return err
	}
	t, err := s.AddTrack(*in)
	if err != nil {
		return err
	}

	path, err := s.Split(ctx, t.ID, *start, *end)
	if err != nil {
		return err
	}
	return a.deliver(ctx, path, *out)
}

func runMix(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "mix")
	out := fs.String("o", "", "write the mix to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.newSession(nil)
	if err != nil {
		return err
	}
	if err := addTracks(s, fs.Args()); err != nil {
		return err
	}

	path, err := s.Mix(ctx)
	if err != nil {
		return err
	}
	return a.deliver(ctx, path, *out)
}

func runWaveform(_ context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "waveform")
	in := fs.String("in", "", "track to draw")
	out := fs.String("o", "", "output file (default: <in>.png or <in>.json)")
	width := fs.Int("width", a.cfg.WaveformWidth, "image width in pixels")
	height := fs.Int("height", a.cfg.WaveformHeight, "image height in pixels")
	asJSON := fs.Bool("json", false, "write min/max peaks as JSON instead of a PNG")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("%w: -in", errMissingFlag)
	}

	t, err := track.Load(*in)
	if err != nil {
		return err
	}

	dst := *out
	if dst == "" {
		ext := ".png"
		if *asJSON {
			ext = ".json"
		}
		dst = strings.TrimSuffix(*in, filepath.Ext(*in)) + ext
	}

	samples, err := t.Buffer.Channel(0)
	if err != nil {
		return err
	}

	// Everything is computed before dst is created so a failure leaves no
	// empty file behind.
	var (
		write   func(io.Writer) error
		columns int
	)
	if *asJSON {
		peaks := waveform.NewPeaks(samples, t.Buffer.SampleRate, *width)
		write, columns = peaks.WriteJSON, peaks.Length
	} else {
		opts := waveform.DefaultOptions()
		opts.Width, opts.Height = *width, *height
		wf, err := waveform.Render(samples, opts)
		if err != nil {
			return err
		}
		write, columns = wf.EncodePNG, len(wf.Columns)
	}

	f, err := os.Create(dst) // #nosec G304 - output path is chosen by the user
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	a.logger.Info("waveform written",
		slog.String("path", dst),
		slog.Int("columns", columns),
	)
	fmt.Fprintln(a.stdout, dst)
	return nil
}

func runPreview(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "preview")
	out := fs.String("o", "", "render the preview to this WAV file")
	useSpeaker := fs.Bool("speaker", false, "play through the default audio device")
	rate := fs.Int("rate", a.cfg.PreviewSampleRate, "output sample rate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var output preview.Output
	switch {
	case *useSpeaker:
		sp, err := speaker.New(*rate)
		if err != nil {
			return err
		}
		defer sp.Close()
		output = sp
	case *out != "":
		w, err := preview.NewWAVOutput(*out, *rate)
		if err != nil {
			return err
		}
		output = w
	default:
		return errNoOutput
	}

	s, err := a.newSession(output)
	if err != nil {
		return err
	}
	if err := addTracks(s, fs.Args()); err != nil {
		return err
	}

	if err := s.StartPreview(ctx); err != nil {
		return err
	}

	select {
	case <-s.PreviewDone():
	case <-ctx.Done():
		a.logger.Info("preview interrupted")
	}
	if err := s.StopPreview(); err != nil {
		return err
	}

	if *out != "" && !*useSpeaker {
		fmt.Fprintln(a.stdout, *out)
	}
	return nil
}

func runShare(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "share")
	in := fs.String("in", "", "file to publish")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("%w: -in", errMissingFlag)
	}

	f, err := os.Open(*in) // #nosec G304 - input path is chosen by the user
	if err != nil {
		return fmt.Errorf("open %s: %w", *in, err)
	}
	defer func() { _ = f.Close() }()

	contentType := mime.TypeByExtension(filepath.Ext(*in))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := a.deps.Storage.Publish(ctx, "shared/"+filepath.Base(*in), f, contentType)
	if err != nil {
		a.logger.Warn("error sharing", slog.String("error", err.Error()))
		return err
	}

	printShare(a.stdout, &session.ShareInfo{
		Title: session.ShareTitle,
		Text:  session.ShareText,
		URL:   url,
	})
	return nil
}

func printShare(w io.Writer, info *session.ShareInfo) {
	fmt.Fprintln(w, info.Title)
	fmt.Fprintln(w, info.Text)
	fmt.Fprintln(w, info.URL)
}

// deliver moves a saved blob to dst, or prints its path when dst is empty.
func (a *app) deliver(ctx context.Context, path, dst string) error {
	if dst == "" {
		fmt.Fprintln(a.stdout, path)
		return nil
	}

	src, err := a.deps.Storage.OpenBlob(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	f, err := os.Create(dst) // #nosec G304 - output path is chosen by the user
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, dst)
	return a.deps.Storage.Revoke(ctx, path)
}

// trackSpec is a track argument: path[:volume[:start[:trim]]].
type trackSpec struct {
	Path       string
	Volume     int
	StartTime  float64
	TrimLength float64
}

func parseTrackSpec(spec string) (trackSpec, error) {
	parts := strings.Split(spec, ":")
	ts := trackSpec{Path: parts[0], Volume: track.DefaultVolume}
	if ts.Path == "" || len(parts) > 4 {
		return ts, fmt.Errorf("%w: %q", errBadTrackSpec, spec)
	}

	var err error
	if len(parts) > 1 && parts[1] != "" {
		if ts.Volume, err = strconv.Atoi(parts[1]); err != nil {
			return ts, fmt.Errorf("%w: volume %q", errBadTrackSpec, parts[1])
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if ts.StartTime, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return ts, fmt.Errorf("%w: start %q", errBadTrackSpec, parts[2])
		}
	}
	if len(parts) > 3 && parts[3] != "" {
		if ts.TrimLength, err = strconv.ParseFloat(parts[3], 64); err != nil {
			return ts, fmt.Errorf("%w: trim %q", errBadTrackSpec, parts[3])
		}
	}
	return ts, nil
}

func addTracks(s *session.Session, specs []string) error {
	for _, spec := range specs {
		ts, err := parseTrackSpec(spec)
		if err != nil {
			return err
		}
		t, err := s.AddTrack(ts.Path)
		if err != nil {
			return err
		}
		if err := s.SetTrackMix(t.ID, ts.Volume, ts.StartTime, ts.TrimLength); err != nil {
			return err
		}
	}
	return nil
}
