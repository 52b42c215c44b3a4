// Package perception contains the producers that feed landmark frames into
// the frame store.
package perception

import (
	"context"

	"github.com/ayusman/landmarkstage/internal/landmark"
)

// Sink receives complete frames. landmark.Store is a Sink.
type Sink interface {
	Ingest(f *landmark.Frame)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(f *landmark.Frame)

func (fn SinkFunc) Ingest(f *landmark.Frame) { fn(f) }

// Source produces frames until ctx is done. Run returns nil on cancellation.
type Source interface {
	Run(ctx context.Context, sink Sink) error
}
