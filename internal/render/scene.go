package render

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/duckpunch/internal/game"
)

// Screen messages.
const (
	StartMessage   = "Show your hand to start the game"
	NoHandMessage  = "Put your hand back in view!"
	RestartMessage = "Press R to restart or Q to quit"
	ExitMessage    = "Exiting the game..."
)

const handBoxThickness = 3

// TimeLabel is the countdown readout, in whole seconds.
func TimeLabel(remaining time.Duration) string {
	return fmt.Sprintf("Time: %d", int(remaining/time.Second))
}

// ScoreLabel is the zero-padded score readout.
func ScoreLabel(score int) string {
	return fmt.Sprintf("Score: %02d", score)
}

// DistanceLabel is the estimate shown above the hand, truncated to whole centimeters.
func DistanceLabel(cm float64) string {
	return fmt.Sprintf("%d cm", int(cm))
}

// GameOverLabel is the headline of the expired screen.
func GameOverLabel(score int) string {
	return fmt.Sprintf("Game Over! Your Score: %d", score)
}

// Scene draws a game.Frame over a camera frame.
type Scene struct {
	sprites *Sprites
	style   Style
}

// NewScene creates a scene drawing the given sprites.
func NewScene(sprites *Sprites) *Scene {
	return &Scene{
		sprites: sprites,
		style:   DefaultStyle(),
	}
}

// Draw renders the state of f. hand is the hand seen this frame, or nil.
func (s *Scene) Draw(img *gocv.Mat, f game.Frame, hand *game.Hand) {
	switch f.State {
	case game.Idle:
		st := s.style.With(2, 20)
		TextBox(img, StartMessage, image.Pt(300, 400), st)

	case game.Active, game.Struck:
		if hand != nil {
			s.drawHand(img, *hand)
		}
		s.drawTarget(img, f.Target)

		hud := s.style.With(3, 20)
		TextBox(img, TimeLabel(f.Remaining), image.Pt(1000, 75), hud)
		TextBox(img, ScoreLabel(f.Session.Score), image.Pt(60, 75), hud)

		if !f.HandPresent {
			TextBox(img, NoHandMessage, image.Pt(350, 400), s.style.With(2, 20))
		}

	case game.Expired:
		TextBox(img, GameOverLabel(f.Session.Score), image.Pt(300, 400), s.style.With(3, 20))
		TextBox(img, RestartMessage, image.Pt(350, 475), s.style.With(2, 10))
	}
}

// DrawExit renders the farewell message shown during the quit grace period.
func (s *Scene) DrawExit(img *gocv.Mat) {
	TextBox(img, ExitMessage, image.Pt(460, 575), s.style.With(2, 10))
}

func (s *Scene) drawHand(img *gocv.Mat, hand game.Hand) {
	gocv.Rectangle(img, hand.Box, Red, handBoxThickness)
	TextBox(img, DistanceLabel(hand.Distance), hand.Box.Min.Add(image.Pt(5, -10)), s.style)
}

func (s *Scene) drawTarget(img *gocv.Mat, t game.Target) {
	sprite := s.sprites.Scaled(t.Struck, t.Scale)
	topLeft := t.Center.Sub(image.Pt(sprite.Cols()/2, sprite.Rows()/2))
	Overlay(img, sprite, topLeft)
}

// DrawMeasurement renders a calibration readout: the hand box, the
// estimated distance and the raw knuckle span it came from.
func DrawMeasurement(img *gocv.Mat, box image.Rectangle, raw, cm float64) {
	gocv.Rectangle(img, box, Magenta, handBoxThickness)
	st := DefaultStyle()
	st.BoxColor = Magenta
	TextBox(img, DistanceLabel(cm), box.Min.Add(image.Pt(5, -10)), st)
	TextBox(img, fmt.Sprintf("span %d px", int(raw)), image.Pt(box.Min.X+5, box.Max.Y+40), st.With(2, 10))
}
