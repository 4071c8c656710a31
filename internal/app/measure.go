package app

import (
	"context"
	"fmt"

	"github.com/ayusman/duckpunch/internal/calibration"
	"github.com/ayusman/duckpunch/internal/detector"
	"github.com/ayusman/duckpunch/internal/display"
	"github.com/ayusman/duckpunch/internal/render"
)

// Measurement is one live calibration reading.
type Measurement struct {
	Raw float64
	CM  float64
}

// Measure shows the raw knuckle span and the fitted estimate for the hand in
// view, without running the game. It is used to record new calibration
// samples. Every reading is passed to record when it is non-nil.
func (a *App) Measure(ctx context.Context, record func(Measurement)) error {
	if a.camera == nil || a.detector == nil {
		return fmt.Errorf("%w: measuring needs a camera and a hand tracker", ErrStartup)
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	defer a.camera.Close()

	failures := 0
	for ctx.Err() == nil {
		frame, err := a.camera.ReadFrame()
		if err != nil {
			if done, rerr := a.readFailure(err, &failures); done {
				return rerr
			}
			if a.poll(keyWait) == display.Quit {
				return nil
			}
			continue
		}
		failures = 0

		if hands, err := a.detector.Detect(frame); err == nil {
			if hand, ok := detector.Primary(hands); ok {
				obs := hand.Observation()
				m := Measurement{
					Raw: calibration.RawDistance(obs.Span[0], obs.Span[1]),
					CM:  a.estimator.Distance(obs.Span[0], obs.Span[1]),
				}
				render.DrawMeasurement(frame, obs.Box, m.Raw, m.CM)
				if record != nil {
					record(m)
				}
			}
		}

		if a.display != nil {
			a.display.Show(frame)
		}
		frame.Close()

		if a.poll(keyWait) == display.Quit {
			return nil
		}
	}
	return nil
}
