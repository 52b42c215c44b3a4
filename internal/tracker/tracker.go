// Package tracker resolves landmark lookups against the current tracking
// frame and maps them to stage coordinates.
//
// Every lookup is non-blocking and never fails: a missing entity or an index
// outside the detected range yields an absent result, which callers must keep
// distinct from a coordinate of zero.
//
// Landmark indices are 0-based for every entity.
package tracker

import (
	"math"
	"strconv"
	"strings"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/stage"
)

// Axis selects the stage coordinate to report.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// MarshalText implements encoding.TextMarshaler.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Tracker answers landmark lookups from a frame store and a mirror flag.
type Tracker struct {
	frames *landmark.Store
	mirror *stage.Mirror
}

// New creates a Tracker reading frames and the mirror flag owned by the caller.
func New(frames *landmark.Store, mirror *stage.Mirror) *Tracker {
	return &Tracker{
		frames: frames,
		mirror: mirror,
	}
}

// Get returns the stage coordinate of landmark index of entity on axis.
// It reports false when the entity or the landmark is not detected.
func (t *Tracker) Get(entity landmark.Entity, axis Axis, index int) (float64, bool) {
	// One load per call: the whole lookup sees a single frame.
	frame := t.frames.Current()

	p, ok := frame.Landmarks(entity).AtKind(entity.Kind(), index)
	if !ok {
		return 0, false
	}

	if axis == AxisY {
		return stage.MapY(p.Y, stage.HalfHeight), true
	}
	return stage.MapX(p.X, t.mirror.Enabled(), stage.HalfWidth), true
}

// Point returns both stage coordinates of a landmark from the same frame.
func (t *Tracker) Point(entity landmark.Entity, index int) (stage.Point, bool) {
	p, ok := t.frames.Current().Landmarks(entity).AtKind(entity.Kind(), index)
	if !ok {
		return stage.Point{}, false
	}
	return stage.Map(p.X, p.Y, t.mirror.Enabled()), true
}

// Reading is a lookup result as surfaced to the block host. An absent reading
// renders as an empty string so hosts never plot it at (0,0).
type Reading struct {
	Value float64
	OK    bool
}

// Absent is the reading for a landmark that is not available.
var Absent = Reading{}

func (r Reading) String() string {
	if !r.OK {
		return ""
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// MarshalJSON renders a number, or "" when absent.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.OK {
		return []byte(`""`), nil
	}
	return strconv.AppendFloat(nil, r.Value, 'f', -1, 64), nil
}

// Read is Get wrapped as a Reading.
func (t *Tracker) Read(entity landmark.Entity, axis Axis, index int) Reading {
	v, ok := t.Get(entity, axis, index)
	return Reading{Value: v, OK: ok}
}

// ParseIndex parses a landmark index as supplied by a block argument. Hosts
// send menu values as text and reporters may pass numbers such as "3.0".
// Anything that is not a non-negative integer is rejected.
func ParseIndex(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, i >= 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
