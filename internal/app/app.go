// Package app runs the game: one synchronous loop that reads a frame, finds
// the hand, advances the target state machine, and draws the result.
package app

import (
	"errors"
	"log"
	"math/rand/v2"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/duckpunch/internal/calibration"
	"github.com/ayusman/duckpunch/internal/capture"
	"github.com/ayusman/duckpunch/internal/detector"
	"github.com/ayusman/duckpunch/internal/display"
	"github.com/ayusman/duckpunch/internal/game"
)

// Loop timing constants.
const (
	// DefaultQuitDelay keeps the exit message on screen before the window closes.
	DefaultQuitDelay = time.Second
	// DefaultMaxFrameErrors aborts after this many consecutive unreadable frames.
	DefaultMaxFrameErrors = 100
	// keyWait is how long each frame waits for a key press.
	keyWait = time.Millisecond
)

var (
	// ErrStartup wraps failures to acquire the camera, tracker or assets.
	ErrStartup = errors.New("startup failed")

	// ErrTooManyFrameErrors is returned when the camera keeps producing bad frames.
	ErrTooManyFrameErrors = errors.New("too many consecutive frame errors")
)

// Sound plays the score sound without blocking.
type Sound interface {
	Play() bool
}

// Drawer renders game frames onto camera frames.
type Drawer interface {
	Draw(img *gocv.Mat, f game.Frame, hand *game.Hand)
	DrawExit(img *gocv.Mat)
}

// CommandSource is an extra, non-blocking source of commands such as the tray.
type CommandSource interface {
	Poll() display.Command
}

// Config holds configuration options for the application.
type Config struct {
	Rules          game.Rules
	Calibration    calibration.Table
	QuitDelay      time.Duration
	MaxFrameErrors int
}

// DefaultConfig returns the stock rules and calibration.
func DefaultConfig() Config {
	return Config{
		Rules:          game.DefaultRules(),
		Calibration:    calibration.DefaultTable(),
		QuitDelay:      DefaultQuitDelay,
		MaxFrameErrors: DefaultMaxFrameErrors,
	}
}

// App is the game loop and the collaborators it drives.
type App struct {
	config    Config
	estimator *calibration.Estimator
	machine   *game.Machine

	camera   capture.Camera
	detector detector.Detector
	display  display.Display
	drawer   Drawer
	sound    Sound
	commands []CommandSource
	onFrame  func(game.Frame)

	now     func() time.Time
	rng     *rand.Rand
	closers []func() error
}

// New fits the calibration and returns an App with no collaborators.
// Calibration failures are returned as calibration errors.
func New(config Config) (*App, error) {
	if config.QuitDelay < 0 {
		config.QuitDelay = 0
	}
	if config.MaxFrameErrors < 0 {
		config.MaxFrameErrors = 0
	}

	est, err := calibration.NewEstimator(config.Calibration)
	if err != nil {
		return nil, err
	}
	log.Printf("Calibration: %s", est.Model())

	return &App{
		config:    config,
		estimator: est,
		now:       time.Now,
	}, nil
}

// SetCamera sets the video source.
func (a *App) SetCamera(c capture.Camera) { a.camera = c }

// SetDetector sets the hand tracker.
func (a *App) SetDetector(d detector.Detector) { a.detector = d }

// SetDisplay sets the output window.
func (a *App) SetDisplay(d display.Display) { a.display = d }

// SetDrawer sets the renderer.
func (a *App) SetDrawer(d Drawer) { a.drawer = d }

// SetSound sets the score sound.
func (a *App) SetSound(s Sound) { a.sound = s }

// AddCommandSource adds a source polled once per frame next to the keyboard.
func (a *App) AddCommandSource(src CommandSource) { a.commands = append(a.commands, src) }

// OnFrame registers a callback invoked with every evaluated frame.
func (a *App) OnFrame(fn func(game.Frame)) { a.onFrame = fn }

// SetClock replaces time.Now.
func (a *App) SetClock(now func() time.Time) { a.now = now }

// SetRand fixes the respawn position source.
func (a *App) SetRand(r *rand.Rand) { a.rng = r }

// Estimator returns the fitted distance estimator.
func (a *App) Estimator() *calibration.Estimator { return a.estimator }

// Machine returns the state machine of the current run, or nil before Run.
func (a *App) Machine() *game.Machine { return a.machine }

// Close releases every collaborator registered by NewFromSettings.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// observe runs the tracker and turns the first hand into game input.
// A tracker error counts as no hand for this frame.
func (a *App) observe(frame *gocv.Mat) *game.Hand {
	if a.detector == nil {
		return nil
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return nil
	}

	hand, ok := detector.Primary(hands)
	if !ok {
		return nil
	}

	obs := hand.Observation()
	return &game.Hand{
		Box:      obs.Box,
		Distance: a.estimator.Distance(obs.Span[0], obs.Span[1]),
	}
}

// poll returns the first command from the keyboard or any extra source.
func (a *App) poll(wait time.Duration) display.Command {
	cmd := display.None
	if a.display != nil {
		cmd = a.display.Poll(wait)
	}
	for _, src := range a.commands {
		if c := src.Poll(); c != display.None && cmd == display.None {
			cmd = c
		}
	}
	return cmd
}
