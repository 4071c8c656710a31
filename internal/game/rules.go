package game

import (
	"image"
	"math"
	"time"
)

// Default tuning.
const (
	DefaultProximityCM = 40.0
	DefaultDwell       = 200 * time.Millisecond
	DefaultDuration    = 20 * time.Second

	DefaultMaxScale  = 1.5
	DefaultMinScale  = 0.5
	DefaultScaleStep = 0.1
)

// Rules are the fixed parameters of a game. They do not change while a
// Machine is running.
type Rules struct {
	// ProximityCM is the distance a hand must be closer than to strike.
	ProximityCM float64

	// Dwell is how long a struck target stays on screen before respawning.
	Dwell time.Duration

	// Duration is the length of one session, counted from the first hand.
	Duration time.Duration

	// Field bounds respawn positions. Both corners are inclusive.
	Field image.Rectangle

	// Home is the target center at start and after a restart.
	Home image.Point

	MaxScale  float64
	MinScale  float64
	ScaleStep float64
}

// DefaultRules returns the rules for a 1280x720 frame.
func DefaultRules() Rules {
	return Rules{
		ProximityCM: DefaultProximityCM,
		Dwell:       DefaultDwell,
		Duration:    DefaultDuration,
		Field:       image.Rect(100, 100, 1100, 600),
		Home:        image.Pt(250, 250),
		MaxScale:    DefaultMaxScale,
		MinScale:    DefaultMinScale,
		ScaleStep:   DefaultScaleStep,
	}
}

// Scale returns the sprite scale for a score. The target shrinks by
// ScaleStep per point and never drops below MinScale.
func (r Rules) Scale(score int) float64 {
	s := r.MaxScale - float64(score)*r.ScaleStep
	// Drop float noise such as 1.1999999999999997 for score 3.
	s = math.Round(s*1e9) / 1e9
	return math.Max(r.MinScale, s)
}

// Scale applies the default scaling rule.
func Scale(score int) float64 {
	return DefaultRules().Scale(score)
}
