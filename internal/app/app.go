// Package app wires the landmark store, producers, video display and
// recorder into one running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/ayusman/landmarkstage/internal/capture"
	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/menu"
	"github.com/ayusman/landmarkstage/internal/perception"
	"github.com/ayusman/landmarkstage/internal/stage"
	"github.com/ayusman/landmarkstage/internal/store"
	"github.com/ayusman/landmarkstage/internal/tracker"
	"github.com/ayusman/landmarkstage/internal/video"
)

// Producer names accepted in Config.Source.
const (
	SourceWebSocket = "websocket"
	SourceMediaPipe = "mediapipe"
	SourceMock      = "mock"
	SourceReplay    = "replay"
)

// ErrUnknownSource is returned for an unrecognized Config.Source.
var ErrUnknownSource = errors.New("unknown frame source")

// Config holds configuration options for the application.
type Config struct {
	// Store persists settings and recordings. It may be nil, in which case
	// nothing is persisted and recording is unavailable.
	Store *store.Store
	// Source selects the producer. Empty means websocket, where frames
	// arrive only through the ingest socket.
	Source     string
	ReplayID   string
	ReplayLoop bool
	CameraID   int
	// Camera overrides the capture device built from CameraID.
	Camera    capture.Camera
	MediaPipe perception.MediaPipeConfig
	// VideoMode is applied at startup. Empty restores the persisted mode.
	VideoMode video.Mode
	Locale    language.Tag
}

// App owns the shared frame store and mirror flag and everything that reads
// or writes them.
type App struct {
	config    Config
	frames    *landmark.Store
	mirror    *stage.Mirror
	tracker   *tracker.Tracker
	camera    capture.Camera
	preview   *video.Preview
	video     *video.Controller
	source    perception.Source
	recorder  *Recorder
	formatter menu.Formatter
	log       zerolog.Logger
}

// New creates an App. Nothing is started until Run.
func New(config Config) (*App, error) {
	a := &App{
		config: config,
		frames: landmark.NewStore(),
		mirror: &stage.Mirror{},
		log:    log.With().Str("module", "app").Logger(),
	}
	a.tracker = tracker.New(a.frames, a.mirror)

	a.camera = config.Camera
	if a.camera == nil {
		camCfg := capture.DefaultConfig()
		camCfg.DeviceID = config.CameraID
		a.camera = capture.NewCamera(camCfg)
	}
	a.preview = video.NewPreview(a.camera)
	a.video = video.NewController(a.preview, a.mirror)

	if config.Store != nil {
		a.recorder = NewRecorder(config.Store.Recordings())
		a.video.OnChange(a.persistVideoMode)
	}

	source, err := a.newSource()
	if err != nil {
		return nil, err
	}
	a.source = source

	tag := config.Locale
	if tag == language.Und {
		tag = language.English
	}
	formatter, err := menu.DefaultFormatter(tag)
	if err != nil {
		return nil, fmt.Errorf("build menu catalog: %w", err)
	}
	a.formatter = formatter

	return a, nil
}

func (a *App) newSource() (perception.Source, error) {
	switch a.config.Source {
	case "", SourceWebSocket:
		return nil, nil
	case SourceMock:
		frames := []*landmark.Frame{perception.OpenPalmFrame(), perception.ThumbsUpFrame()}
		return perception.NewMockSource(frames, time.Second, true), nil
	case SourceMediaPipe:
		return perception.NewMediaPipeSource(a.camera, a.config.MediaPipe), nil
	case SourceReplay:
		if a.config.Store == nil {
			return nil, fmt.Errorf("replay source needs a store")
		}
		if a.config.ReplayID == "" {
			return nil, fmt.Errorf("replay source needs a recording id")
		}
		return perception.NewReplaySource(a.config.Store.Recordings(), a.config.ReplayID, a.config.ReplayLoop), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, a.config.Source)
}

// Ingest replaces the current frame and tees it into the active recording.
func (a *App) Ingest(f *landmark.Frame) {
	a.frames.Ingest(f)
	if a.recorder != nil {
		a.recorder.Record(f)
	}
}

// Run restores the video mode, then runs the producer until ctx is done.
// Resources are released before Run returns.
func (a *App) Run(ctx context.Context) error {
	a.restoreVideoMode()

	g, ctx := errgroup.WithContext(ctx)
	if a.source != nil {
		g.Go(func() error {
			a.log.Info().Str("source", a.config.Source).Msg("Frame source started")
			if err := a.source.Run(ctx, a); err != nil {
				return fmt.Errorf("%s source: %w", a.config.Source, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	err := g.Wait()
	a.close()
	return err
}

func (a *App) close() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to finish recording")
		}
	}
	if err := a.camera.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Error closing camera")
	}
	a.log.Info().Msg("Application stopped")
}

func (a *App) restoreVideoMode() {
	mode := a.config.VideoMode
	if mode == "" && a.config.Store != nil {
		if saved, err := a.config.Store.Settings().Get(store.SettingVideoMode); err == nil {
			mode = video.Mode(saved)
		} else if !errors.Is(err, store.ErrNotFound) {
			a.log.Warn().Err(err).Msg("Failed to load video mode")
		}
	}
	if mode == "" {
		return
	}

	if err := a.video.SetMode(mode); err != nil {
		a.log.Warn().Err(err).Str("mode", string(mode)).Msg("Failed to restore video mode")
	}
}

func (a *App) persistVideoMode(m video.Mode) {
	if err := a.config.Store.Settings().Set(store.SettingVideoMode, string(m)); err != nil {
		a.log.Warn().Err(err).Msg("Failed to persist video mode")
	}
}

// Frames returns the shared frame store.
func (a *App) Frames() *landmark.Store {
	return a.frames
}

// Tracker returns the landmark accessor.
func (a *App) Tracker() *tracker.Tracker {
	return a.tracker
}

// Video returns the video mode controller.
func (a *App) Video() *video.Controller {
	return a.video
}

// Preview returns the camera preview display.
func (a *App) Preview() *video.Preview {
	return a.preview
}

// Recorder returns the frame recorder, or nil without a store.
func (a *App) Recorder() *Recorder {
	return a.recorder
}

// Formatter returns the menu label formatter for the configured locale.
func (a *App) Formatter() menu.Formatter {
	return a.formatter
}
