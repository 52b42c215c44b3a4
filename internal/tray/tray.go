// Package tray provides a system tray menu for switching the video mode and
// watching the frame feed.
package tray

import (
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/landmarkstage/internal/video"
)

// StatusInterval is how often the frame status line is refreshed.
const StatusInterval = time.Second

// staleAfter marks the feed as stalled in the status line.
const staleAfter = 2 * time.Second

// Controller is the video mode controller the menu drives.
type Controller interface {
	Mode() video.Mode
	SetMode(video.Mode) error
	OnChange(func(video.Mode))
}

// FrameStatus reports the state of the frame store.
type FrameStatus interface {
	Seq() uint64
	Age() (time.Duration, bool)
}

var modeTitles = map[video.Mode]string{
	video.ModeOff:       "Video Off",
	video.ModeOn:        "Video On",
	video.ModeOnFlipped: "Video On (flipped)",
}

// Tray represents the system tray application.
type Tray struct {
	controller Controller
	frames     FrameStatus
	onOpen     func()
	onQuit     func()
	mu         sync.RWMutex
	log        zerolog.Logger

	// Menu items stored for later updates
	modeItems  map[video.Mode]*systray.MenuItem
	statusItem *systray.MenuItem
	done       chan struct{}
}

// New creates a Tray over controller and frames. Mode changes made elsewhere
// are reflected in the menu.
func New(controller Controller, frames FrameStatus) *Tray {
	t := &Tray{
		controller: controller,
		frames:     frames,
		log:        log.With().Str("module", "tray").Logger(),
		done:       make(chan struct{}),
	}
	controller.OnChange(t.syncMode)
	return t
}

// OnOpen sets the callback for the open-in-browser menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application. It must be called from the main
// goroutine and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Landmark Stage")
	systray.SetTooltip("Landmark Stage body tracking")

	t.mu.Lock()
	t.modeItems = make(map[video.Mode]*systray.MenuItem, len(modeTitles))
	for _, m := range video.Modes() {
		t.modeItems[m] = systray.AddMenuItemCheckbox(modeTitles[m], "Set video mode", false)
	}
	systray.AddSeparator()

	t.statusItem = systray.AddMenuItem(statusText(0, 0, false), "Frame feed")
	t.statusItem.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Stage...", "Open the stage in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Landmark Stage")

	t.syncMode(t.controller.Mode())

	for m, item := range t.modeItems {
		go func() {
			for {
				select {
				case <-item.ClickedCh:
					t.handleMode(m)
				case <-t.done:
					return
				}
			}
		}()
	}

	go t.refreshStatus()

	go func() {
		for {
			select {
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			case <-t.done:
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	close(t.done)
}

func (t *Tray) refreshStatus() {
	ticker := time.NewTicker(StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
		}
		age, ok := t.frames.Age()
		text := statusText(t.frames.Seq(), age, ok)

		t.mu.RLock()
		if t.statusItem != nil {
			t.statusItem.SetTitle(text)
		}
		t.mu.RUnlock()
	}
}

// handleMode applies m. On failure the checkmarks are restored to the
// controller's actual mode.
func (t *Tray) handleMode(m video.Mode) {
	if err := t.controller.SetMode(m); err != nil {
		t.log.Warn().Err(err).Str("mode", string(m)).Msg("Failed to set video mode")
		t.syncMode(t.controller.Mode())
	}
}

// syncMode checks the item for current and unchecks the rest.
func (t *Tray) syncMode(current video.Mode) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for m, item := range t.modeItems {
		if m == current {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// statusText renders the frame status line.
func statusText(seq uint64, age time.Duration, ok bool) string {
	switch {
	case !ok:
		return "Frames: waiting"
	case age > staleAfter:
		return fmt.Sprintf("Frames: #%d, stalled %s", seq, age.Truncate(time.Second))
	default:
		return fmt.Sprintf("Frames: #%d", seq)
	}
}
