package perception

import (
	"context"
	"time"

	"github.com/ayusman/landmarkstage/internal/landmark"
)

// MockSource emits a fixed frame sequence on a ticker. It is used for demos
// without a camera and in tests.
type MockSource struct {
	frames   []*landmark.Frame
	interval time.Duration
	loop     bool
}

// NewMockSource creates a MockSource. With loop unset, Run returns after the
// last frame has been emitted.
func NewMockSource(frames []*landmark.Frame, interval time.Duration, loop bool) *MockSource {
	if interval <= 0 {
		interval = time.Second / 15
	}
	return &MockSource{frames: frames, interval: interval, loop: loop}
}

func (m *MockSource) Run(ctx context.Context, sink Sink) error {
	if len(m.frames) == 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		if i == len(m.frames) {
			if !m.loop {
				return nil
			}
			i = 0
		}

		sink.Ingest(m.frames[i])

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// ThumbsUpHand returns a right hand with the thumb extended upward and the
// other fingers curled.
func ThumbsUpHand() landmark.Landmarks {
	h := make(landmark.Landmarks, landmark.HandLandmarks)

	h[landmark.Wrist] = landmark.Point{X: 0.5, Y: 0.8}

	h[landmark.ThumbCMC] = landmark.Point{X: 0.55, Y: 0.75}
	h[landmark.ThumbMCP] = landmark.Point{X: 0.58, Y: 0.65}
	h[landmark.ThumbIP] = landmark.Point{X: 0.58, Y: 0.50}
	h[landmark.ThumbTip] = landmark.Point{X: 0.58, Y: 0.35}

	h[landmark.IndexMCP] = landmark.Point{X: 0.55, Y: 0.70, Z: -0.02}
	h[landmark.IndexPIP] = landmark.Point{X: 0.55, Y: 0.68, Z: -0.05}
	h[landmark.IndexDIP] = landmark.Point{X: 0.52, Y: 0.70, Z: -0.04}
	h[landmark.IndexTip] = landmark.Point{X: 0.50, Y: 0.72, Z: -0.02}

	h[landmark.MiddleMCP] = landmark.Point{X: 0.50, Y: 0.68, Z: -0.02}
	h[landmark.MiddlePIP] = landmark.Point{X: 0.50, Y: 0.66, Z: -0.05}
	h[landmark.MiddleDIP] = landmark.Point{X: 0.47, Y: 0.68, Z: -0.04}
	h[landmark.MiddleTip] = landmark.Point{X: 0.45, Y: 0.70, Z: -0.02}

	h[landmark.RingMCP] = landmark.Point{X: 0.45, Y: 0.70, Z: -0.02}
	h[landmark.RingPIP] = landmark.Point{X: 0.45, Y: 0.68, Z: -0.05}
	h[landmark.RingDIP] = landmark.Point{X: 0.42, Y: 0.70, Z: -0.04}
	h[landmark.RingTip] = landmark.Point{X: 0.40, Y: 0.72, Z: -0.02}

	h[landmark.PinkyMCP] = landmark.Point{X: 0.40, Y: 0.72, Z: -0.02}
	h[landmark.PinkyPIP] = landmark.Point{X: 0.40, Y: 0.70, Z: -0.05}
	h[landmark.PinkyDIP] = landmark.Point{X: 0.37, Y: 0.72, Z: -0.04}
	h[landmark.PinkyTip] = landmark.Point{X: 0.35, Y: 0.74, Z: -0.02}

	return h
}

// OpenPalmHand returns a hand with every finger extended.
func OpenPalmHand() landmark.Landmarks {
	h := make(landmark.Landmarks, landmark.HandLandmarks)

	h[landmark.Wrist] = landmark.Point{X: 0.5, Y: 0.8}

	h[landmark.ThumbCMC] = landmark.Point{X: 0.55, Y: 0.75, Z: 0.02}
	h[landmark.ThumbMCP] = landmark.Point{X: 0.62, Y: 0.70, Z: 0.03}
	h[landmark.ThumbIP] = landmark.Point{X: 0.68, Y: 0.65, Z: 0.03}
	h[landmark.ThumbTip] = landmark.Point{X: 0.73, Y: 0.60, Z: 0.03}

	h[landmark.IndexMCP] = landmark.Point{X: 0.55, Y: 0.68}
	h[landmark.IndexPIP] = landmark.Point{X: 0.57, Y: 0.55}
	h[landmark.IndexDIP] = landmark.Point{X: 0.58, Y: 0.45}
	h[landmark.IndexTip] = landmark.Point{X: 0.58, Y: 0.35}

	h[landmark.MiddleMCP] = landmark.Point{X: 0.50, Y: 0.66}
	h[landmark.MiddlePIP] = landmark.Point{X: 0.50, Y: 0.52}
	h[landmark.MiddleDIP] = landmark.Point{X: 0.50, Y: 0.40}
	h[landmark.MiddleTip] = landmark.Point{X: 0.50, Y: 0.28}

	h[landmark.RingMCP] = landmark.Point{X: 0.45, Y: 0.68}
	h[landmark.RingPIP] = landmark.Point{X: 0.43, Y: 0.55}
	h[landmark.RingDIP] = landmark.Point{X: 0.42, Y: 0.45}
	h[landmark.RingTip] = landmark.Point{X: 0.42, Y: 0.35}

	h[landmark.PinkyMCP] = landmark.Point{X: 0.40, Y: 0.70}
	h[landmark.PinkyPIP] = landmark.Point{X: 0.37, Y: 0.60}
	h[landmark.PinkyDIP] = landmark.Point{X: 0.35, Y: 0.50}
	h[landmark.PinkyTip] = landmark.Point{X: 0.34, Y: 0.42}

	return h
}

// OpenPalmFrame is a frame with an open palm in the left hand slot.
func OpenPalmFrame() *landmark.Frame {
	return &landmark.Frame{Hands: [2]landmark.Landmarks{OpenPalmHand(), nil}}
}

// ThumbsUpFrame is a frame with a thumbs up in the right hand slot.
func ThumbsUpFrame() *landmark.Frame {
	return &landmark.Frame{Hands: [2]landmark.Landmarks{nil, ThumbsUpHand()}}
}
