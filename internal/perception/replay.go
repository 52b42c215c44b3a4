package perception

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/store"
)

// MinReplayInterval is the shortest time between the last frame of a looped
// pass and the first frame of the next one.
const MinReplayInterval = time.Second / 15

// FrameReader loads the stored frames of a recording.
type FrameReader interface {
	Frames(recordingID string) ([]store.RecordingFrame, error)
}

// ReplaySource plays a stored recording back with its original timing.
type ReplaySource struct {
	reader      FrameReader
	recordingID string
	loop        bool
	log         zerolog.Logger
}

// NewReplaySource creates a source for recordingID. With loop set, playback
// restarts from the first frame after the last one.
func NewReplaySource(reader FrameReader, recordingID string, loop bool) *ReplaySource {
	return &ReplaySource{
		reader:      reader,
		recordingID: recordingID,
		loop:        loop,
		log:         log.With().Str("module", "replay").Str("recording", recordingID).Logger(),
	}
}

func (s *ReplaySource) Run(ctx context.Context, sink Sink) error {
	stored, err := s.reader.Frames(s.recordingID)
	if err != nil {
		return fmt.Errorf("load recording %s: %w", s.recordingID, err)
	}

	frames := make([]*landmark.Frame, 0, len(stored))
	offsets := make([]time.Duration, 0, len(stored))
	for _, rf := range stored {
		f, err := landmark.DecodeFrame(rf.Data)
		if err != nil {
			s.log.Warn().Err(err).Int("seq", rf.Seq).Msg("Skipping malformed recorded frame")
			continue
		}
		frames = append(frames, f)
		offsets = append(offsets, rf.Offset)
	}

	s.log.Info().Int("frames", len(frames)).Bool("loop", s.loop).Msg("Replay started")

	if len(frames) == 0 {
		<-ctx.Done()
		return nil
	}

	// The next pass starts one average frame interval after the last frame.
	last := offsets[len(offsets)-1]
	gap := MinReplayInterval
	if n := len(offsets); n > 1 {
		gap = max(gap, last/time.Duration(n-1))
	}
	period := last + gap

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	start := time.Now()
	for {
		for i, f := range frames {
			timer.Reset(time.Until(start.Add(offsets[i])))
			select {
			case <-ctx.Done():
				return nil
			case <-timer.C:
			}
			sink.Ingest(f)
		}

		if !s.loop {
			s.log.Info().Msg("Replay finished")
			return nil
		}
		start = start.Add(period)
	}
}
