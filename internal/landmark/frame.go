package landmark

import "time"

// Frame is one complete perception result. Any entity may be absent.
// Frames are immutable once ingested; producers must not modify a frame
// after handing it to a Store.
type Frame struct {
	// Hands holds up to two hands. Slot 0 is the left (first) hand and slot 1
	// the right (second) hand, in whatever order the producer assigns.
	Hands [2]Landmarks
	Pose  Landmarks
	// Faces holds every detected face mesh; only the first is addressable.
	Faces []Landmarks

	// Seq is assigned by the Store on ingest, starting at 1.
	Seq        uint64
	ReceivedAt time.Time
}

// Landmarks returns the landmark list for e, or nil when e is not detected.
func (f *Frame) Landmarks(e Entity) Landmarks {
	if f == nil {
		return nil
	}
	switch e {
	case LeftHand:
		return f.Hands[0]
	case RightHand:
		return f.Hands[1]
	case Pose:
		return f.Pose
	case Face:
		if len(f.Faces) == 0 {
			return nil
		}
		return f.Faces[0]
	}
	return nil
}

// Detected reports whether e has at least one landmark in this frame.
func (f *Frame) Detected(e Entity) bool {
	return len(f.Landmarks(e)) > 0
}

// Empty reports whether no entity is detected.
func (f *Frame) Empty() bool {
	for _, e := range Entities() {
		if f.Detected(e) {
			return false
		}
	}
	return true
}
