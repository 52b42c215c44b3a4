// Package video controls the stage video display and, through it, the mirror
// flag used when mapping landmarks to stage X.
package video

import (
	"errors"
	"fmt"
)

// ErrInvalidMode is returned for a display mode string that is not one of
// off, on or on-flipped.
var ErrInvalidMode = errors.New("invalid video mode")

// Mode is the tri-state video display setting.
type Mode string

const (
	ModeOff       Mode = "off"
	ModeOn        Mode = "on"
	ModeOnFlipped Mode = "on-flipped"
)

// Modes lists the display modes in menu order.
func Modes() []Mode {
	return []Mode{ModeOff, ModeOn, ModeOnFlipped}
}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeOff, ModeOn, ModeOnFlipped:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Enabled reports whether the mode shows video.
func (m Mode) Enabled() bool {
	return m == ModeOn || m == ModeOnFlipped
}

// Mirrored reports the mirror flag the mode selects.
func (m Mode) Mirrored() bool {
	return m == ModeOnFlipped
}
