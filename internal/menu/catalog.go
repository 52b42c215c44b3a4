package menu

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/video"
)

var handNames = [landmark.HandLandmarks]string{
	"wrist",
	"thumb CMC",
	"thumb MCP",
	"thumb IP",
	"thumb tip",
	"index finger MCP",
	"index finger PIP",
	"index finger DIP",
	"index finger tip",
	"middle finger MCP",
	"middle finger PIP",
	"middle finger DIP",
	"middle finger tip",
	"ring finger MCP",
	"ring finger PIP",
	"ring finger DIP",
	"ring finger tip",
	"pinky MCP",
	"pinky PIP",
	"pinky DIP",
	"pinky tip",
}

var poseNames = [landmark.PoseLandmarks]string{
	"nose",
	"left eye (inner)",
	"left eye",
	"left eye (outer)",
	"right eye (inner)",
	"right eye",
	"right eye (outer)",
	"left ear",
	"right ear",
	"mouth (left)",
	"mouth (right)",
	"left shoulder",
	"right shoulder",
	"left elbow",
	"right elbow",
	"left wrist",
	"right wrist",
	"left pinky",
	"right pinky",
	"left index",
	"right index",
	"left thumb",
	"right thumb",
	"left hip",
	"right hip",
	"left knee",
	"right knee",
	"left ankle",
	"right ankle",
	"left heel",
	"right heel",
	"left foot index",
	"right foot index",
}

// NewCatalog builds the built-in English message catalog. Lookups for other
// languages fall back to English.
func NewCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	set := func(key, msg string) error {
		return b.SetString(language.English, key, msg)
	}

	for i, name := range handNames {
		if err := set(LandmarkKey(landmark.KindHand, i), name); err != nil {
			return nil, err
		}
	}
	for i, name := range poseNames {
		if err := set(LandmarkKey(landmark.KindPose, i), name); err != nil {
			return nil, err
		}
	}
	modes := map[video.Mode]string{
		video.ModeOff:       "off",
		video.ModeOn:        "on",
		video.ModeOnFlipped: "on flipped",
	}
	for m, label := range modes {
		if err := set(ModeKey(m), label); err != nil {
			return nil, err
		}
	}

	return b, nil
}

type printerFormatter struct {
	p *message.Printer
}

func (f printerFormatter) Format(key string) string {
	return f.p.Sprintf(key)
}

// NewFormatter returns a Formatter for the catalog language closest to tag.
// Keys missing from the catalog are returned unchanged.
func NewFormatter(tag language.Tag, cat catalog.Catalog) Formatter {
	if langs := cat.Languages(); len(langs) > 0 {
		_, i, _ := language.NewMatcher(langs).Match(tag)
		tag = langs[i]
	}
	return printerFormatter{p: message.NewPrinter(tag, message.Catalog(cat))}
}

// DefaultFormatter returns a Formatter over the built-in catalog.
func DefaultFormatter(tag language.Tag) (Formatter, error) {
	cat, err := NewCatalog()
	if err != nil {
		return nil, err
	}
	return NewFormatter(tag, cat), nil
}
