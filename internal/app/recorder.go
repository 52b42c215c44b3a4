package app

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/store"
)

// RecorderQueueSize is the number of frames buffered between ingest and the
// database writer. Frames beyond it are dropped.
const RecorderQueueSize = 256

var (
	// ErrRecordingActive is returned when starting a recording while one is
	// already running.
	ErrRecordingActive = errors.New("a recording is already active")
	// ErrNotRecording is returned when stopping with no active recording.
	ErrNotRecording = errors.New("no active recording")
	// ErrRecorderClosed is returned after Close.
	ErrRecorderClosed = errors.New("recorder is closed")
)

type recorderOp struct {
	id     string
	offset time.Duration
	frame  *landmark.Frame
	flush  chan struct{}
}

// Recorder tees ingested frames into the active recording. Frames are
// written by a single background writer so Record never touches the
// database.
type Recorder struct {
	repo    *store.RecordingRepository
	queue   chan recorderOp
	done    chan struct{}
	dropped rate.Sometimes
	log     zerolog.Logger

	mu      sync.Mutex
	active  *store.Recording
	started time.Time
	closed  bool
}

// NewRecorder creates a Recorder and starts its writer. Call Close to stop it.
func NewRecorder(repo *store.RecordingRepository) *Recorder {
	r := &Recorder{
		repo:    repo,
		queue:   make(chan recorderOp, RecorderQueueSize),
		done:    make(chan struct{}),
		dropped: rate.Sometimes{First: 1, Interval: 5 * time.Second},
		log:     log.With().Str("module", "recorder").Logger(),
	}
	go r.writer()
	return r
}

// Start begins a new recording. An empty name is replaced with a timestamp.
func (r *Recorder) Start(name string) (*store.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRecorderClosed
	}
	if r.active != nil {
		return nil, ErrRecordingActive
	}

	if name == "" {
		name = "Recording " + time.Now().Format(time.DateTime)
	}
	rec, err := r.repo.Create(name)
	if err != nil {
		return nil, err
	}

	r.active = rec
	r.started = time.Now()
	r.log.Info().Str("id", rec.ID).Str("name", rec.Name).Msg("Recording started")
	return rec, nil
}

// Stop finishes the active recording once every frame recorded so far has
// been written.
func (r *Recorder) Stop() (*store.Recording, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRecorderClosed
	}
	if r.active == nil {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	id := r.active.ID
	r.active = nil

	flush := make(chan struct{})
	r.queue <- recorderOp{flush: flush}
	r.mu.Unlock()

	<-flush

	rec, err := r.repo.Stop(id)
	if err != nil {
		return nil, err
	}
	r.log.Info().Str("id", rec.ID).Msg("Recording stopped")
	return rec, nil
}

// Active returns the running recording, if any.
func (r *Recorder) Active() (*store.Recording, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return nil, false
	}
	rec := *r.active
	return &rec, true
}

// Record queues f for the active recording. It does nothing when no
// recording is running and drops the frame when the writer is behind.
func (r *Recorder) Record(f *landmark.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.closed {
		return
	}

	op := recorderOp{id: r.active.ID, offset: time.Since(r.started), frame: f}
	select {
	case r.queue <- op:
	default:
		r.dropped.Do(func() {
			r.log.Warn().Str("id", op.id).Msg("Recorder queue full, dropping frames")
		})
	}
}

// Close stops the writer after draining queued frames and finishes any
// active recording.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	active := r.active
	r.active = nil
	close(r.queue)
	r.mu.Unlock()

	<-r.done

	if active != nil {
		_, err := r.repo.Stop(active.ID)
		return err
	}
	return nil
}

func (r *Recorder) writer() {
	defer close(r.done)

	for op := range r.queue {
		if op.flush != nil {
			close(op.flush)
			continue
		}

		data, err := landmark.EncodeFrame(op.frame)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to encode recorded frame")
			continue
		}
		if err := r.repo.AppendFrame(op.id, op.offset, data); err != nil {
			r.log.Warn().Err(err).Str("id", op.id).Msg("Failed to store recorded frame")
		}
	}
}
