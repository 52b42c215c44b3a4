package perception

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
	"golang.org/x/time/rate"

	"github.com/ayusman/landmarkstage/internal/capture"
	"github.com/ayusman/landmarkstage/internal/landmark"
)

// ErrScriptNotFound is returned when the MediaPipe service script cannot be
// located.
var ErrScriptNotFound = errors.New("mediapipe_service.py not found")

// MediaPipeConfig configures the MediaPipe subprocess.
type MediaPipeConfig struct {
	// ScriptPath is the service script. Empty searches the usual locations.
	ScriptPath string
	// PythonPath is the interpreter. Empty prefers a local venv, then python3.
	PythonPath string
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// DefaultMediaPipeConfig returns the restart backoff defaults.
func DefaultMediaPipeConfig() MediaPipeConfig {
	return MediaPipeConfig{
		MinBackoff: 500 * time.Millisecond,
		MaxBackoff: 10 * time.Second,
	}
}

// MediaPipeSource runs holistic tracking in a Python MediaPipe subprocess.
// Camera frames go to the service's stdin as a 4-byte big-endian length
// followed by JPEG bytes; the service answers each with one wire-format frame
// per line on stdout.
type MediaPipeSource struct {
	camera    capture.Camera
	config    MediaPipeConfig
	malformed rate.Sometimes
	log       zerolog.Logger
}

// NewMediaPipeSource creates a source reading from camera. The subprocess is
// started by Run and restarted with backoff when it fails.
func NewMediaPipeSource(camera capture.Camera, config MediaPipeConfig) *MediaPipeSource {
	defaults := DefaultMediaPipeConfig()
	if config.MinBackoff <= 0 {
		config.MinBackoff = defaults.MinBackoff
	}
	if config.MaxBackoff < config.MinBackoff {
		config.MaxBackoff = max(defaults.MaxBackoff, config.MinBackoff)
	}
	return &MediaPipeSource{
		camera:    camera,
		config:    config,
		malformed: rate.Sometimes{First: 1, Interval: 5 * time.Second},
		log:       log.With().Str("module", "mediapipe").Logger(),
	}
}

func (s *MediaPipeSource) Run(ctx context.Context, sink Sink) error {
	backoff := s.config.MinBackoff
	for {
		n, err := s.session(ctx, sink)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrScriptNotFound) {
			return err
		}
		if n > 0 {
			backoff = s.config.MinBackoff
		}

		s.log.Warn().Err(err).Int("frames", n).Dur("retry_in", backoff).Msg("MediaPipe session ended")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, s.config.MaxBackoff)
	}
}

// session runs one subprocess lifetime and returns the number of frames it
// produced.
func (s *MediaPipeSource) session(ctx context.Context, sink Sink) (int, error) {
	script := s.config.ScriptPath
	if script == "" {
		script = findMediaPipeScript()
	}
	if script == "" {
		return 0, ErrScriptNotFound
	}

	python := s.config.PythonPath
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	if err := s.camera.Open(); err != nil {
		return 0, fmt.Errorf("open camera: %w", err)
	}

	procCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(procCtx, python, script)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = s.log.With().Str("stream", "stderr").Logger()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start mediapipe service: %w", err)
	}
	s.log.Info().Str("python", python).Str("script", script).Int("pid", cmd.Process.Pid).Msg("MediaPipe service started")

	n, err := s.exchange(procCtx, stdin, bufio.NewReader(stdout), sink)

	stdin.Close()
	cancel()
	_ = cmd.Wait()

	return n, err
}

// exchange sends camera frames to w and ingests the frames read back from r
// until ctx is done or the stream fails.
func (s *MediaPipeSource) exchange(ctx context.Context, w io.Writer, r *bufio.Reader, sink Sink) (int, error) {
	fps := s.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case <-ticker.C:
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			return n, fmt.Errorf("read camera: %w", err)
		}
		err = writeJPEG(w, frame)
		frame.Close()
		if err != nil {
			return n, err
		}

		line, err := r.ReadBytes('\n')
		if err != nil {
			return n, fmt.Errorf("read response: %w", err)
		}

		f, err := landmark.DecodeFrame(line)
		if err != nil {
			s.malformed.Do(func() {
				s.log.Warn().Err(err).Msg("Skipping malformed frame from MediaPipe service")
			})
			continue
		}
		sink.Ingest(f)
		n++
	}
}

func writeJPEG(w io.Writer, frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := w.Write(length); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

func findMediaPipeScript() string {
	execDir := ""
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	return firstExisting(
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".landmarkstage/scripts/mediapipe_service.py"),
	)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execDir := ""
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	return firstExisting(
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".landmarkstage/venv/bin/python"),
	)
}

func firstExisting(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}
