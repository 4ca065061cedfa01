// Package tray provides the system tray menu of the head tracker.
package tray

import (
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/headtrack/internal/app"
)

// Tracker is the part of app.App the tray drives.
type Tracker interface {
	Settings() app.Settings
	UpdateSettings(fn func(app.Settings) app.Settings) app.Settings
	Status() app.Status
}

const refreshInterval = time.Second

// Tray represents the system tray application.
type Tray struct {
	tracker    Tracker
	onSettings func()
	onQuit     func()
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuStatus   *systray.MenuItem
	menuStrategy *systray.MenuItem
	menuScale    *systray.MenuItem
	menuPause    *systray.MenuItem

	done chan struct{}
}

// New creates a Tray controlling t.
func New(t Tracker) *Tray {
	return &Tray{
		tracker: t,
		done:    make(chan struct{}),
	}
}

// OnSettings sets the callback function to be called when the dashboard menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("headtrack")
	systray.SetTooltip("Head tracking")

	settings := t.tracker.Settings()

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(statusTitle(t.tracker.Status()), "Current pose")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuStrategy = systray.AddMenuItem(strategyTitle(settings), "Cycle smoothing strategy")
	t.menuScale = systray.AddMenuItem(scaleTitle(settings), "Cycle frame scale")
	t.menuPause = systray.AddMenuItem(pauseTitle(settings), "Pause or resume tracking")
	systray.AddSeparator()
	t.mu.Unlock()

	menuSettings := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit headtrack")

	go t.refresh()

	go func() {
		for {
			select {
			case <-t.menuStrategy.ClickedCh:
				t.handleStrategy()
			case <-t.menuScale.ClickedCh:
				t.handleScale()
			case <-t.menuPause.ClickedCh:
				t.handlePause()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	close(t.done)
}

// refresh keeps the status line current.
func (t *Tray) refresh() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.mu.RLock()
			if t.menuStatus != nil {
				t.menuStatus.SetTitle(statusTitle(t.tracker.Status()))
			}
			t.mu.RUnlock()
		}
	}
}

// handleStrategy cycles the smoothing strategy (none, exponential, kalman, kalman2d).
func (t *Tray) handleStrategy() app.Settings {
	s := t.tracker.UpdateSettings(app.Settings.NextStrategy)
	t.setTitle(t.menuStrategy, strategyTitle(s))
	return s
}

// handleScale cycles the processing scale.
func (t *Tray) handleScale() app.Settings {
	s := t.tracker.UpdateSettings(app.Settings.NextScale)
	t.setTitle(t.menuScale, scaleTitle(s))
	return s
}

// handlePause toggles tracking.
func (t *Tray) handlePause() app.Settings {
	s := t.tracker.UpdateSettings(func(s app.Settings) app.Settings {
		s.Paused = !s.Paused
		return s
	})
	t.setTitle(t.menuPause, pauseTitle(s))
	return s
}

func (t *Tray) setTitle(item *systray.MenuItem, title string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if item != nil {
		item.SetTitle(title)
	}
}

// handleSettings handles the dashboard menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

func statusTitle(s app.Status) string {
	switch {
	case !s.Pose.Valid:
		return fmt.Sprintf("No face (%.0f fps)", s.FPS)
	case s.Pose.Held:
		return fmt.Sprintf("Held %+.2f %+.2f %+.2f (%.0f fps)", s.Pose.X, s.Pose.Y, s.Pose.Z, s.FPS)
	}
	return fmt.Sprintf("Pose %+.2f %+.2f %+.2f (%.0f fps)", s.Pose.X, s.Pose.Y, s.Pose.Z, s.FPS)
}

func strategyTitle(s app.Settings) string {
	return "Smoothing: " + s.Strategy.String()
}

func scaleTitle(s app.Settings) string {
	return fmt.Sprintf("Scale: %.0f%%", s.Scale()*100)
}

func pauseTitle(s app.Settings) string {
	if s.Paused {
		return "○ Paused"
	}
	return "● Tracking"
}
