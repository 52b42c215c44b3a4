// Package landmark models tracking frames (hand, pose and face landmarks in
// normalized tracking space) and the single-slot store that producers write
// and accessors read.
package landmark

import (
	"errors"
	"fmt"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist     = 0
	ThumbCMC  = 1
	ThumbMCP  = 2
	ThumbIP   = 3
	ThumbTip  = 4
	IndexMCP  = 5
	IndexPIP  = 6
	IndexDIP  = 7
	IndexTip  = 8
	MiddleMCP = 9
	MiddlePIP = 10
	MiddleDIP = 11
	MiddleTip = 12
	RingMCP   = 13
	RingPIP   = 14
	RingDIP   = 15
	RingTip   = 16
	PinkyMCP  = 17
	PinkyPIP  = 18
	PinkyDIP  = 19
	PinkyTip  = 20
)

// Full landmark counts per entity type.
const (
	HandLandmarks = 21
	PoseLandmarks = 33
	FaceLandmarks = 468
)

// ErrUnknownKind is returned when an entity type name is not recognized.
var ErrUnknownKind = errors.New("unknown landmark kind")

// Point is a landmark position in tracking space. X and Y are normalized to
// [0,1] with the origin at the top-left of the capture frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmarks is the ordered landmark list of one detected entity.
// A nil or empty list means the entity is not currently detected. The list
// may be shorter than the full count when only some landmarks were found.
type Landmarks []Point

// At returns the landmark at index i. It reports false when i falls outside
// the detected range.
func (l Landmarks) At(i int) (Point, bool) {
	if i < 0 || i >= len(l) {
		return Point{}, false
	}
	return l[i], true
}

// AtKind is At limited to the index range of kind k.
func (l Landmarks) AtKind(k Kind, i int) (Point, bool) {
	if i >= k.Size() {
		return Point{}, false
	}
	return l.At(i)
}

// Kind is an entity type: it fixes the landmark count and index range.
type Kind int

const (
	KindHand Kind = iota
	KindPose
	KindFace
)

// Size returns the number of landmarks an entity of this kind carries.
func (k Kind) Size() int {
	switch k {
	case KindHand:
		return HandLandmarks
	case KindPose:
		return PoseLandmarks
	case KindFace:
		return FaceLandmarks
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case KindHand:
		return "hand"
	case KindPose:
		return "pose"
	case KindFace:
		return "face"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind parses "hand", "pose" or "face".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "hand":
		return KindHand, nil
	case "pose":
		return KindPose, nil
	case "face":
		return KindFace, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Entity is one addressable tracked subject within a frame.
type Entity int

const (
	// LeftHand is hand slot 0, the first hand the producer reports.
	LeftHand Entity = iota
	// RightHand is hand slot 1.
	RightHand
	Pose
	// Face is the first detected face.
	Face
)

// Entities lists every addressable entity in a stable order.
func Entities() []Entity {
	return []Entity{LeftHand, RightHand, Pose, Face}
}

// Kind returns the entity type.
func (e Entity) Kind() Kind {
	switch e {
	case Pose:
		return KindPose
	case Face:
		return KindFace
	default:
		return KindHand
	}
}

func (e Entity) String() string {
	switch e {
	case LeftHand:
		return "leftHand"
	case RightHand:
		return "rightHand"
	case Pose:
		return "pose"
	case Face:
		return "face"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Entity) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}
