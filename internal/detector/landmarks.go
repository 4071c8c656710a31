// Package detector provides hand tracking interfaces and types.
package detector

import (
	"image"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark as reported by MediaPipe: X and Y normalized to
// [0,1] of the frame, Z relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 normalized hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Hand is a tracked hand in frame pixel coordinates.
type Hand struct {
	Points     [NumLandmarks]image.Point
	Box        image.Rectangle
	Handedness string
	Score      float64
}

// Observation is the part of a hand the game consumes: where the hand is
// and the two knuckles whose span stands in for its distance.
type Observation struct {
	Box  image.Rectangle
	Span [2]image.Point
}

// ToPixels scales normalized landmarks to a width x height frame. Each
// coordinate is truncated to a whole pixel.
func (h *HandLandmarks) ToPixels(width, height int) Hand {
	hand := Hand{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i, p := range h.Points {
		hand.Points[i] = image.Pt(
			int(math.Trunc(p.X*float64(width))),
			int(math.Trunc(p.Y*float64(height))),
		)
	}
	hand.Box = BoundingBox(hand.Points[:])
	return hand
}

// BoundingBox returns the smallest rectangle spanning all points, with
// Max inclusive of the extreme landmark.
func BoundingBox(points []image.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}

// Observation returns the box and the index-to-pinky MCP span.
func (h Hand) Observation() Observation {
	return Observation{
		Box:  h.Box,
		Span: [2]image.Point{h.Points[IndexMCP], h.Points[PinkyMCP]},
	}
}

// Primary returns the first hand, or false when there is none.
func Primary(hands []Hand) (Hand, bool) {
	if len(hands) == 0 {
		return Hand{}, false
	}
	return hands[0], true
}
