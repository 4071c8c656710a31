// Package tray offers Restart and Quit from the system tray and shows the
// running score.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/duckpunch/internal/display"
)

// Tray represents the system tray menu.
type Tray struct {
	commands chan display.Command
	mu       sync.RWMutex
	ready    bool
	score    int

	// Menu items stored for later updates
	menuScore *systray.MenuItem
}

// New creates a Tray whose commands are buffered until the game loop drains them.
func New() *Tray {
	return &Tray{
		commands: make(chan display.Command, 4),
	}
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop closes the tray from outside the menu, e.g. when the game quits by key.
func (t *Tray) Stop() {
	systray.Quit()
}

// Poll returns a pending command without blocking.
func (t *Tray) Poll() display.Command {
	select {
	case c := <-t.commands:
		return c
	default:
		return display.None
	}
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Duckpunch")
	systray.SetTooltip("Duckpunch hand tracking game")

	t.mu.Lock()
	t.menuScore = systray.AddMenuItem(t.scoreTitle(), "Current score")
	t.menuScore.Disable()
	t.ready = true
	t.mu.Unlock()
	systray.AddSeparator()

	menuRestart := systray.AddMenuItem("Restart", "Start a new game")
	menuQuit := systray.AddMenuItem("Quit", "Quit Duckpunch")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuRestart.ClickedCh:
				t.send(display.Restart)
			case <-menuQuit.ClickedCh:
				t.send(display.Quit)
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	t.mu.Lock()
	t.ready = false
	t.mu.Unlock()
}

// send queues a command; a full queue drops it since the loop drains every frame.
func (t *Tray) send(c display.Command) {
	select {
	case t.commands <- c:
	default:
	}
}

// SetScore updates the score shown in the menu. It is called every frame,
// so the menu is only touched when the score changes.
func (t *Tray) SetScore(score int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if score == t.score {
		return
	}
	t.score = score
	if t.ready && t.menuScore != nil {
		t.menuScore.SetTitle(ScoreTitle(score))
	}
}

// scoreTitle labels the last score reported, which may predate the menu.
// Callers hold mu.
func (t *Tray) scoreTitle() string {
	return ScoreTitle(t.score)
}

// ScoreTitle is the menu label for a score.
func ScoreTitle(score int) string {
	return fmt.Sprintf("Score: %02d", score)
}
