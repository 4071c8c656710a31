// Package display shows frames in a window and reports key presses.
package display

import (
	"time"

	"gocv.io/x/gocv"
)

// Command is a player request read from the keyboard or the tray.
type Command int

const (
	// None means no request this frame.
	None Command = iota
	// Restart resets the game.
	Restart
	// Quit ends the program.
	Quit
)

func (c Command) String() string {
	switch c {
	case Restart:
		return "restart"
	case Quit:
		return "quit"
	default:
		return "none"
	}
}

// CommandForKey maps a WaitKey code to a command. Both cases are accepted.
func CommandForKey(key int) Command {
	if key < 0 {
		return None
	}
	switch key & 0xff {
	case 'q', 'Q':
		return Quit
	case 'r', 'R':
		return Restart
	default:
		return None
	}
}

// Display presents frames and polls input without blocking the loop.
type Display interface {
	// Show presents the frame.
	Show(frame *gocv.Mat)
	// Poll returns the most recent command, waiting at most wait for one.
	Poll(wait time.Duration) Command
	Close() error
}

// Window is a HighGUI window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show draws the frame.
func (w *Window) Show(frame *gocv.Mat) {
	w.win.IMShow(*frame)
}

// Poll pumps the window event loop for at least one millisecond.
func (w *Window) Poll(wait time.Duration) Command {
	ms := int(wait / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return CommandForKey(w.win.WaitKey(ms))
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
