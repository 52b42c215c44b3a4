package video

import (
	"errors"
	"fmt"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/ayusman/landmarkstage/internal/capture"
)

// ErrDisplayDisabled is returned when reading a preview frame while the
// display is off.
var ErrDisplayDisabled = errors.New("video display is disabled")

// Preview is a camera-backed Display. In the default orientation the image
// is shown mirrored, selfie style, matching the unmirrored landmark mapping;
// the flipped orientation shows the image as captured.
type Preview struct {
	camera  capture.Camera
	enabled atomic.Bool
	flipped atomic.Bool
}

// NewPreview creates a disabled Preview over camera.
func NewPreview(camera capture.Camera) *Preview {
	return &Preview{camera: camera}
}

// Enable opens the camera and starts serving frames.
func (p *Preview) Enable() error {
	if err := p.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	p.enabled.Store(true)
	return nil
}

// Disable stops serving frames. The camera stays open because producers may
// share it; it is released when the application stops.
func (p *Preview) Disable() error {
	p.enabled.Store(false)
	return nil
}

func (p *Preview) SetFlipped(flipped bool) {
	p.flipped.Store(flipped)
}

func (p *Preview) Enabled() bool {
	return p.enabled.Load()
}

func (p *Preview) Flipped() bool {
	return p.flipped.Load()
}

// ReadJPEG captures one frame in display orientation and encodes it as JPEG.
func (p *Preview) ReadJPEG() ([]byte, error) {
	if !p.Enabled() {
		return nil, ErrDisplayDisabled
	}

	frame, err := p.camera.ReadFrame()
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	out := frame
	if !p.Flipped() {
		mirrored := gocv.NewMat()
		defer mirrored.Close()
		gocv.Flip(*frame, &mirrored, 1)
		out = &mirrored
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *out)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}
