// Package menu builds the option lists a block host offers for landmark and
// video arguments. Lists are rebuilt on every call; the largest (face) has
// 468 entries.
package menu

import (
	"fmt"
	"strconv"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/video"
)

// KeyPrefix namespaces every translation key.
const KeyPrefix = "landmarkstage."

// Formatter resolves a translation key to display text.
type Formatter interface {
	Format(key string) string
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(key string) string

// Format calls f.
func (f FormatterFunc) Format(key string) string {
	return f(key)
}

// Keys is a Formatter that echoes keys back, for hosts that translate later.
var Keys = FormatterFunc(func(key string) string { return key })

// Option is one landmark menu entry. Value is the 0-based landmark index.
type Option struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// ModeOption is one video menu entry.
type ModeOption struct {
	Text  string     `json:"text"`
	Value video.Mode `json:"value"`
}

// LandmarkKey returns the translation key naming landmark i of kind.
// Face landmarks have no names and no key.
func LandmarkKey(kind landmark.Kind, i int) string {
	switch kind {
	case landmark.KindHand:
		return fmt.Sprintf("%shandLandmark%d", KeyPrefix, i)
	case landmark.KindPose:
		return fmt.Sprintf("%sposeLandmark%d", KeyPrefix, i)
	}
	return ""
}

// ModeKey returns the translation key for a video mode label.
func ModeKey(m video.Mode) string {
	switch m {
	case video.ModeOn:
		return KeyPrefix + "on"
	case video.ModeOnFlipped:
		return KeyPrefix + "onFlipped"
	default:
		return KeyPrefix + "off"
	}
}

// Options lists the valid landmark indices of kind in ascending order.
// Hand and pose entries read "<name> (<index>)"; face entries are labelled
// with the 1-based position only, carrying the 0-based index as value.
func Options(kind landmark.Kind, f Formatter) []Option {
	if f == nil {
		f = Keys
	}

	n := kind.Size()
	out := make([]Option, 0, n)
	for i := 0; i < n; i++ {
		var text string
		if kind == landmark.KindFace {
			text = strconv.Itoa(i + 1)
		} else {
			text = fmt.Sprintf("%s (%d)", f.Format(LandmarkKey(kind, i)), i)
		}
		out = append(out, Option{Text: text, Value: i})
	}
	return out
}

// VideoOptions lists the video display modes.
func VideoOptions(f Formatter) []ModeOption {
	if f == nil {
		f = Keys
	}

	modes := video.Modes()
	out := make([]ModeOption, 0, len(modes))
	for _, m := range modes {
		out = append(out, ModeOption{Text: f.Format(ModeKey(m)), Value: m})
	}
	return out
}
