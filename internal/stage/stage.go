// Package stage converts normalized tracking-space coordinates into stage
// coordinates: origin at the stage center, X in [-240,240] increasing to the
// right, Y in [-180,180] increasing upward.
package stage

import "sync/atomic"

// Half extents of the stage, taken from the 480x360 capture frame.
const (
	HalfWidth  = 240.0
	HalfHeight = 180.0
)

// MapX maps a normalized x to stage X. With mirror set the sign is flipped.
func MapX(nx float64, mirror bool, halfWidth float64) float64 {
	x := halfWidth - nx*2*halfWidth
	if mirror {
		return -x
	}
	return x
}

// MapY maps a normalized y to stage Y. Y never responds to the mirror flag.
func MapY(ny float64, halfHeight float64) float64 {
	return halfHeight - ny*2*halfHeight
}

// Point is a position in stage space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Map converts a normalized point using the standard stage extents.
func Map(nx, ny float64, mirror bool) Point {
	return Point{
		X: MapX(nx, mirror, HalfWidth),
		Y: MapY(ny, HalfHeight),
	}
}

// Mirror is the process-wide horizontal mirror flag. The zero value is
// unmirrored. It is safe for one writer and any number of readers.
type Mirror struct {
	on atomic.Bool
}

// Set updates the flag.
func (m *Mirror) Set(on bool) {
	m.on.Store(on)
}

// Enabled reports the flag. A nil Mirror is never enabled.
func (m *Mirror) Enabled() bool {
	if m == nil {
		return false
	}
	return m.on.Load()
}
