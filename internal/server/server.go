// Package server provides the HTTP host surface: reporter evaluation, menus,
// video mode, recordings, the preview stream and the frame sockets.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/landmarkstage/internal/app"
	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/menu"
	"github.com/ayusman/landmarkstage/internal/perception"
	"github.com/ayusman/landmarkstage/internal/server/api"
	"github.com/ayusman/landmarkstage/internal/store"
	"github.com/ayusman/landmarkstage/internal/tracker"
	"github.com/ayusman/landmarkstage/internal/video"
)

// Config holds the server configuration. Routes whose dependencies are nil
// are not registered.
type Config struct {
	StaticDir string
	Frames    *landmark.Store
	Tracker   *tracker.Tracker
	// Sink receives frames pushed over /api/frames. It defaults to Frames.
	Sink      perception.Sink
	Video     *video.Controller
	Preview   FrameSource
	Store     *store.Store
	Recorder  *app.Recorder
	Formatter menu.Formatter
}

// ConfigFromApp builds a Config exposing every component of a.
func ConfigFromApp(a *app.App, s *store.Store, staticDir string) Config {
	return Config{
		StaticDir: staticDir,
		Frames:    a.Frames(),
		Tracker:   a.Tracker(),
		Sink:      a,
		Video:     a.Video(),
		Preview:   a.Preview(),
		Store:     s,
		Recorder:  a.Recorder(),
		Formatter: a.Formatter(),
	}
}

// Server represents the HTTP server.
type Server struct {
	config    Config
	mux       *http.ServeMux
	start     time.Time
	landmarks *LandmarksHandler
	log       zerolog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Sink == nil && config.Frames != nil {
		config.Sink = config.Frames
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    log.With().Str("module", "server").Logger(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/blocks", api.NewBlocksHandler())

	if s.config.Tracker != nil {
		s.mux.Handle("/api/reporters/", api.NewReporterHandler(s.config.Tracker))

		s.landmarks = NewLandmarksHandler(s.config.Tracker)
		s.mux.Handle("/api/landmarks", s.landmarks)
	}

	menus := api.NewMenuHandler(s.config.Formatter)
	s.mux.Handle("/api/menus/", menus)

	if s.config.Video != nil {
		s.mux.Handle("/api/video", api.NewVideoHandler(s.config.Video))
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.Sink != nil {
		s.mux.Handle("/api/frames", NewFramesHandler(s.config.Sink))
	}

	if s.config.Store != nil && s.config.Recorder != nil {
		recordings := api.NewRecordingsHandler(s.config.Store, s.config.Recorder)
		s.mux.Handle("/api/recordings", recordings)
		s.mux.Handle("/api/recordings/", recordings)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status     string     `json:"status"`
	Uptime     string     `json:"uptime"`
	FrameSeq   uint64     `json:"frame_seq"`
	FrameAgeMS *int64     `json:"frame_age_ms,omitempty"`
	Video      video.Mode `json:"video,omitempty"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).String(),
	}
	if s.config.Frames != nil {
		response.FrameSeq = s.config.Frames.Seq()
		if age, ok := s.config.Frames.Age(); ok {
			ms := age.Milliseconds()
			response.FrameAgeMS = &ms
		}
	}
	if s.config.Video != nil {
		response.Video = s.config.Video.Mode()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := sonic.ConfigStd.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close stops background broadcasting.
func (s *Server) Close() {
	if s.landmarks != nil {
		s.landmarks.Close()
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
