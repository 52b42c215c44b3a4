package video

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/landmarkstage/internal/stage"
)

// Display is the host video surface the controller drives.
type Display interface {
	Enable() error
	Disable() error
	// SetFlipped selects the flipped presentation used by on-flipped.
	SetFlipped(flipped bool)
}

// NopDisplay is a Display with no video surface.
type NopDisplay struct{}

func (NopDisplay) Enable() error   { return nil }
func (NopDisplay) Disable() error  { return nil }
func (NopDisplay) SetFlipped(bool) {}

// Controller applies display modes. It is the only writer of the mirror flag.
type Controller struct {
	display  Display
	mirror   *stage.Mirror
	mode     Mode
	onChange []func(Mode)
	mu       sync.Mutex
	log      zerolog.Logger
}

// NewController creates a Controller in ModeOff. A nil display is replaced
// with NopDisplay and a nil mirror with a private one.
func NewController(display Display, mirror *stage.Mirror) *Controller {
	if display == nil {
		display = NopDisplay{}
	}
	if mirror == nil {
		mirror = &stage.Mirror{}
	}
	return &Controller{
		display: display,
		mirror:  mirror,
		mode:    ModeOff,
		log:     log.With().Str("module", "video").Logger(),
	}
}

// OnChange registers fn to run after every successful mode change. Hooks
// run in registration order.
func (c *Controller) OnChange(fn func(Mode)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Mode returns the current display mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Mirrored reports the current mirror flag.
func (c *Controller) Mirrored() bool {
	return c.mirror.Enabled()
}

// SetModeString parses s and applies it. An unknown mode returns
// ErrInvalidMode and leaves display and mirror untouched.
func (c *Controller) SetModeString(s string) error {
	m, err := ParseMode(s)
	if err != nil {
		return err
	}
	return c.SetMode(m)
}

// SetMode applies m. Turning the display off leaves the mirror flag as it
// was. If the display cannot be enabled the mode and mirror flag are kept.
func (c *Controller) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}

	c.mu.Lock()

	if m == ModeOff {
		if err := c.display.Disable(); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("disable display: %w", err)
		}
	} else {
		if err := c.display.Enable(); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("enable display: %w", err)
		}
		c.mirror.Set(m.Mirrored())
		c.display.SetFlipped(m.Mirrored())
	}

	prev := c.mode
	c.mode = m
	hooks := c.onChange
	c.mu.Unlock()

	c.log.Info().Str("from", string(prev)).Str("to", string(m)).Bool("mirror", c.mirror.Enabled()).Msg("Video mode changed")

	// Outside the lock so the hook may read controller state.
	for _, fn := range hooks {
		fn(m)
	}
	return nil
}
