// Package tray provides the system tray menu: tracking status, the immersive
// toggle, the settings link and quit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

const (
	titleOverlay   = "● Overlay"
	titleImmersive = "○ Immersive"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(immersive bool)
	onSettings func()
	onQuit     func()
	immersive  bool
	status     string
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray with the overlay shown.
func New() *Tray {
	return &Tray{status: "Initializing..."}
}

// OnToggle sets the callback called when immersive mode is toggled.
func (t *Tray) OnToggle(fn func(immersive bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
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

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Soulfree")

	t.mu.Lock()
	systray.SetTooltip(t.status)
	t.menuStatus = systray.AddMenuItem(t.status, "Tracking status")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuToggle = systray.AddMenuItem(toggleTitle(t.immersive), "Toggle immersive mode")
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Soulfree")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.Toggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(immersive bool) string {
	if immersive {
		return titleImmersive
	}
	return titleOverlay
}

// Toggle flips immersive mode and notifies the toggle callback.
func (t *Tray) Toggle() {
	t.mu.Lock()
	t.immersive = !t.immersive
	immersive := t.immersive
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(immersive))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(immersive)
	}
}

// SetImmersive mirrors a toggle made elsewhere, such as the viewer keyboard,
// without calling back.
func (t *Tray) SetImmersive(immersive bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.immersive = immersive
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(immersive))
	}
}

// handleSettings handles the settings menu item click.
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

// SetStatus updates the status line and tooltip.
func (t *Tray) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(status)
		systray.SetTooltip(status)
	}
}

// Status returns the last status shown.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Immersive reports whether the overlay is hidden.
func (t *Tray) Immersive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.immersive
}
