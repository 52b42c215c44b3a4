package landmark

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// ErrMalformedFrame is returned when a frame document is not a JSON object.
var ErrMalformedFrame = errors.New("malformed frame")

// The wire format follows the handsfree result object:
//
//	{
//	  "hands":    {"landmarks": [[{x,y,z}, ...], [...]]},
//	  "pose":     {"poseLandmarks": [{x,y,z}, ...]},
//	  "facemesh": {"multiFaceLandmarks": [[{x,y,z}, ...]]}
//	}
//
// Each entity is decoded on its own. An entity whose shape is wrong is
// dropped (absent) instead of failing the whole frame.
type wireFrame struct {
	Hands    json.RawMessage `json:"hands,omitempty"`
	Pose     json.RawMessage `json:"pose,omitempty"`
	Facemesh json.RawMessage `json:"facemesh,omitempty"`
}

type wireHands struct {
	Landmarks []json.RawMessage `json:"landmarks"`
}

type wirePose struct {
	PoseLandmarks json.RawMessage `json:"poseLandmarks"`
}

type wireFace struct {
	MultiFaceLandmarks []json.RawMessage `json:"multiFaceLandmarks"`
}

// DecodeFrame parses a wire frame.
func DecodeFrame(data []byte) (*Frame, error) {
	var w wireFrame
	if err := sonic.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	f := &Frame{}

	var hands wireHands
	if decodeRaw(w.Hands, &hands) {
		for i := 0; i < len(f.Hands) && i < len(hands.Landmarks); i++ {
			f.Hands[i] = decodeLandmarks(hands.Landmarks[i], HandLandmarks)
		}
	}

	var pose wirePose
	if decodeRaw(w.Pose, &pose) {
		f.Pose = decodeLandmarks(pose.PoseLandmarks, PoseLandmarks)
	}

	var face wireFace
	if decodeRaw(w.Facemesh, &face) && len(face.MultiFaceLandmarks) > 0 {
		// A broken face keeps its slot so later faces never move up.
		f.Faces = make([]Landmarks, len(face.MultiFaceLandmarks))
		for i, raw := range face.MultiFaceLandmarks {
			f.Faces[i] = decodeLandmarks(raw, FaceLandmarks)
		}
	}

	return f, nil
}

func decodeRaw(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return false
	}
	return sonic.Unmarshal(raw, v) == nil
}

// decodeLandmarks keeps the prefix of the list up to the first null point so
// that a missing landmark never turns into a point at (0,0). Points past size
// are dropped.
func decodeLandmarks(raw json.RawMessage, size int) Landmarks {
	var points []*Point
	if !decodeRaw(raw, &points) {
		return nil
	}
	if len(points) > size {
		points = points[:size]
	}
	l := make(Landmarks, 0, len(points))
	for _, p := range points {
		if p == nil {
			break
		}
		l = append(l, *p)
	}
	if len(l) == 0 {
		return nil
	}
	return l
}

// EncodeFrame writes f in the wire format accepted by DecodeFrame.
func EncodeFrame(f *Frame) ([]byte, error) {
	var out struct {
		Hands *struct {
			Landmarks []Landmarks `json:"landmarks"`
		} `json:"hands,omitempty"`
		Pose *struct {
			PoseLandmarks Landmarks `json:"poseLandmarks"`
		} `json:"pose,omitempty"`
		Facemesh *struct {
			MultiFaceLandmarks []Landmarks `json:"multiFaceLandmarks"`
		} `json:"facemesh,omitempty"`
	}

	if f != nil {
		if f.Detected(LeftHand) || f.Detected(RightHand) {
			out.Hands = &struct {
				Landmarks []Landmarks `json:"landmarks"`
			}{Landmarks: []Landmarks{f.Hands[0], f.Hands[1]}}
		}
		if f.Detected(Pose) {
			out.Pose = &struct {
				PoseLandmarks Landmarks `json:"poseLandmarks"`
			}{PoseLandmarks: f.Pose}
		}
		if len(f.Faces) > 0 {
			out.Facemesh = &struct {
				MultiFaceLandmarks []Landmarks `json:"multiFaceLandmarks"`
			}{MultiFaceLandmarks: f.Faces}
		}
	}

	data, err := sonic.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}
