package app

import (
	"fmt"
	"log"

	"github.com/ayusman/duckpunch/internal/audio"
	"github.com/ayusman/duckpunch/internal/capture"
	"github.com/ayusman/duckpunch/internal/config"
	"github.com/ayusman/duckpunch/internal/detector"
	"github.com/ayusman/duckpunch/internal/display"
	"github.com/ayusman/duckpunch/internal/game"
	"github.com/ayusman/duckpunch/internal/render"
)

// WindowTitle is the title of the game window.
const WindowTitle = "Duckpunch"

// ConfigFromSettings maps resolved settings onto the loop configuration.
func ConfigFromSettings(s config.Settings) Config {
	cfg := DefaultConfig()
	cfg.Rules.ProximityCM = s.ProximityCM
	cfg.Rules.Dwell = s.Dwell
	cfg.Rules.Duration = s.Duration
	cfg.Rules.Field = s.Field
	cfg.Rules.Home = game.DefaultRules().Home
	if !cfg.Rules.Home.In(s.Field) {
		cfg.Rules.Home = s.Field.Min
	}
	cfg.Calibration = s.Calibration
	return cfg
}

// NewFromSettings fits the calibration and acquires the real collaborators:
// camera, MediaPipe tracker, sprites, window and sound. Anything that cannot
// be acquired is reported as ErrStartup; already acquired resources are
// released before returning.
func NewFromSettings(s config.Settings) (*App, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid settings: %w", ErrStartup, err)
	}

	a, err := New(ConfigFromSettings(s))
	if err != nil {
		return nil, err
	}

	a.SetCamera(capture.NewCamera(capture.Options{
		Source: s.CameraSource,
		Width:  s.Width,
		Height: s.Height,
		FPS:    s.FPS,
		Mirror: s.Mirror,
	}))

	detCfg := detector.DefaultConfig()
	detCfg.ScriptPath = s.DetectorScript
	detCfg.Python = s.Python
	detCfg.MinConfidence = s.MinConfidence
	det, err := detector.NewMediaPipeDetector(detCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: hand tracker: %w", ErrStartup, err)
	}
	a.SetDetector(det)
	a.closers = append(a.closers, det.Close)

	sprites, err := render.LoadSprites(s.TargetSprite, s.HitSprite)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: %w", ErrStartup, err)
	}
	a.SetDrawer(render.NewScene(sprites))
	a.closers = append(a.closers, sprites.Close)

	sound := audio.NewSoundManager(audio.Config{
		Enabled:   s.AudioEnabled,
		Path:      s.Sound,
		Volume:    s.Volume,
		MaxVoices: audio.DefaultConfig().MaxVoices,
	})
	if err := sound.Initialize(); err != nil {
		// The game is playable without sound.
		log.Printf("Audio disabled: %v", err)
	} else {
		a.SetSound(sound)
		a.closers = append(a.closers, func() error {
			sound.Cleanup()
			return nil
		})
	}

	win := display.NewWindow(WindowTitle)
	a.SetDisplay(win)
	a.closers = append(a.closers, win.Close)

	return a, nil
}
