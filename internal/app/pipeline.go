package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gocv.io/x/gocv"

	"github.com/ayusman/duckpunch/internal/capture"
	"github.com/ayusman/duckpunch/internal/display"
	"github.com/ayusman/duckpunch/internal/game"
)

// Run opens the camera and plays until the player quits, the context is
// cancelled, or a finite video source ends. It returns an ErrStartup error
// when the camera cannot be opened.
//
// Each frame:
//  1. Read a frame (blocks until the camera delivers one)
//  2. Track the hand and estimate its distance
//  3. Advance the state machine; play the sound on a strike
//  4. Draw and show the frame
//  5. Poll for restart or quit
//
// Unreadable frames are skipped without touching game state.
func (a *App) Run(ctx context.Context) error {
	if a.camera == nil {
		return fmt.Errorf("%w: no camera", ErrStartup)
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	a.machine = game.New(a.config.Rules, a.rng, a.now())
	log.Printf("Game loop started, session %s", a.machine.Session().ID)

	failures := 0
	for {
		if ctx.Err() != nil {
			log.Println("Game loop cancelled")
			return nil
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			if done, rerr := a.readFailure(err, &failures); done {
				return rerr
			}
			if a.handleCommand(a.poll(keyWait)) {
				return nil
			}
			continue
		}
		failures = 0

		if quit := a.processFrame(frame); quit {
			log.Printf("Quit, final score %d", a.machine.Session().Score)
			return nil
		}
	}
}

// processFrame evaluates and presents one frame and reports whether the
// player asked to quit. It closes the frame.
func (a *App) processFrame(frame *gocv.Mat) bool {
	defer frame.Close()

	hand := a.observe(frame)
	f := a.machine.Step(a.now(), hand)

	if f.Has(game.TargetStruck) && a.sound != nil {
		a.sound.Play()
	}
	if a.onFrame != nil {
		a.onFrame(f)
	}

	if a.drawer != nil {
		a.drawer.Draw(frame, f, hand)
	}
	if a.display != nil {
		a.display.Show(frame)
	}

	if !a.handleCommand(a.poll(keyWait)) {
		return false
	}
	if a.drawer != nil {
		a.drawer.DrawExit(frame)
	}
	if a.display != nil {
		a.display.Show(frame)
		a.display.Poll(a.config.QuitDelay)
	}
	return true
}

// handleCommand applies a restart and reports whether the player quit.
func (a *App) handleCommand(cmd display.Command) bool {
	switch cmd {
	case display.Quit:
		return true
	case display.Restart:
		if a.machine != nil {
			a.machine.Restart(a.now())
		}
	}
	return false
}

// readFailure applies the bad-frame policy shared by Run and Measure:
// end of stream stops cleanly, unreadable frames are skipped until
// MaxFrameErrors in a row, anything else stops with the error.
func (a *App) readFailure(err error, failures *int) (done bool, result error) {
	switch {
	case errors.Is(err, capture.ErrEndOfStream):
		log.Println("Video source ended")
		return true, nil
	case errors.Is(err, capture.ErrFrame):
		*failures++
		if a.config.MaxFrameErrors > 0 && *failures >= a.config.MaxFrameErrors {
			return true, fmt.Errorf("%w: %d in a row: %w", ErrTooManyFrameErrors, *failures, err)
		}
		log.Printf("Skipping frame: %v", err)
		return false, nil
	default:
		return true, fmt.Errorf("read frame: %w", err)
	}
}
