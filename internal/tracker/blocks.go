package tracker

import (
	"errors"
	"fmt"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/stage"
)

// ErrUnknownOpcode is returned when no reporter block has the given opcode.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Block describes one reporter block exposed to the host: its stable opcode,
// the lookup it performs and the menu that supplies its landmark argument.
type Block struct {
	Opcode string          `json:"opcode"`
	Entity landmark.Entity `json:"entity"`
	Axis   Axis            `json:"axis"`
	Menu   landmark.Kind   `json:"menu"`
}

var blocks = []Block{
	{Opcode: "getLeftHandX", Entity: landmark.LeftHand, Axis: AxisX, Menu: landmark.KindHand},
	{Opcode: "getLeftHandY", Entity: landmark.LeftHand, Axis: AxisY, Menu: landmark.KindHand},
	{Opcode: "getRightHandX", Entity: landmark.RightHand, Axis: AxisX, Menu: landmark.KindHand},
	{Opcode: "getRightHandY", Entity: landmark.RightHand, Axis: AxisY, Menu: landmark.KindHand},
	{Opcode: "getPoseX", Entity: landmark.Pose, Axis: AxisX, Menu: landmark.KindPose},
	{Opcode: "getPoseY", Entity: landmark.Pose, Axis: AxisY, Menu: landmark.KindPose},
	{Opcode: "getFaceX", Entity: landmark.Face, Axis: AxisX, Menu: landmark.KindFace},
	{Opcode: "getFaceY", Entity: landmark.Face, Axis: AxisY, Menu: landmark.KindFace},
}

// Blocks returns the reporter block table in display order.
func Blocks() []Block {
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return out
}

// LookupBlock finds a reporter block by opcode.
func LookupBlock(opcode string) (Block, error) {
	for _, b := range blocks {
		if b.Opcode == opcode {
			return b, nil
		}
	}
	return Block{}, fmt.Errorf("%w: %q", ErrUnknownOpcode, opcode)
}

// Report runs the reporter block named opcode.
func (t *Tracker) Report(opcode string, index int) (Reading, error) {
	b, err := LookupBlock(opcode)
	if err != nil {
		return Absent, err
	}
	return t.Read(b.Entity, b.Axis, index), nil
}

// Snapshot is every landmark of one frame in stage space. Absent entities
// are nil.
type Snapshot struct {
	Seq    uint64           `json:"seq"`
	Mirror bool             `json:"mirror"`
	Hands  [2][]stage.Point `json:"hands"`
	Pose   []stage.Point    `json:"pose"`
	Face   []stage.Point    `json:"face"`
}

// Snapshot maps the whole current frame.
func (t *Tracker) Snapshot() Snapshot {
	frame := t.frames.Current()
	mirror := t.mirror.Enabled()

	return Snapshot{
		Seq:    frame.Seq,
		Mirror: mirror,
		Hands: [2][]stage.Point{
			mapAll(frame, landmark.LeftHand, mirror),
			mapAll(frame, landmark.RightHand, mirror),
		},
		Pose: mapAll(frame, landmark.Pose, mirror),
		Face: mapAll(frame, landmark.Face, mirror),
	}
}

func mapAll(frame *landmark.Frame, e landmark.Entity, mirror bool) []stage.Point {
	l := frame.Landmarks(e)
	if len(l) == 0 {
		return nil
	}
	if n := e.Kind().Size(); len(l) > n {
		l = l[:n]
	}
	out := make([]stage.Point, len(l))
	for i, p := range l {
		out[i] = stage.Map(p.X, p.Y, mirror)
	}
	return out
}
