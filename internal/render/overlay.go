// Package render composites the game onto camera frames: alpha-blended
// sprites, filled text boxes and the HUD.
package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Style controls how TextBox draws.
type Style struct {
	Font      gocv.HersheyFont
	Scale     float64
	Thickness int
	// Offset pads the filled box around the text.
	Offset    int
	TextColor color.RGBA
	BoxColor  color.RGBA
}

// Colors used on screen.
var (
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Navy    = color.RGBA{R: 0, G: 0, B: 140, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// DefaultStyle is a white-on-navy box with plain Hershey text.
func DefaultStyle() Style {
	return Style{
		Font:      gocv.FontHersheyPlain,
		Scale:     3,
		Thickness: 3,
		Offset:    10,
		TextColor: White,
		BoxColor:  Navy,
	}
}

// With returns a copy of s with scale and offset replaced.
func (s Style) With(scale float64, offset int) Style {
	s.Scale = scale
	s.Offset = offset
	return s
}

// TextBox draws text with its baseline-left corner at origin on a filled
// box and returns the box.
func TextBox(img *gocv.Mat, text string, origin image.Point, st Style) image.Rectangle {
	size := gocv.GetTextSize(text, st.Font, st.Scale, st.Thickness)
	box := image.Rect(
		origin.X-st.Offset, origin.Y-size.Y-st.Offset,
		origin.X+size.X+st.Offset, origin.Y+st.Offset,
	)
	gocv.Rectangle(img, box, st.BoxColor, -1)
	gocv.PutText(img, text, origin, st.Font, st.Scale, st.TextColor, st.Thickness)
	return box
}

// Overlay alpha-blends a 4-channel BGRA sprite onto a 3-channel frame with
// its top-left corner at topLeft. Parts of the sprite outside the frame are
// clipped. A sprite without alpha is copied opaque.
func Overlay(img *gocv.Mat, sprite gocv.Mat, topLeft image.Point) {
	frameRect := image.Rect(0, 0, img.Cols(), img.Rows())
	spriteRect := image.Rect(0, 0, sprite.Cols(), sprite.Rows()).Add(topLeft)

	dst := spriteRect.Intersect(frameRect)
	if dst.Empty() {
		return
	}
	src := dst.Sub(topLeft)

	roi := img.Region(dst)
	defer roi.Close()
	part := sprite.Region(src)
	defer part.Close()

	if part.Channels() < 4 {
		part.CopyTo(&roi)
		return
	}

	channels := gocv.Split(part)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()

	fg := gocv.NewMat()
	defer fg.Close()
	gocv.Merge(channels[:3], &fg)

	alpha := gocv.NewMat()
	defer alpha.Close()
	gocv.Merge([]gocv.Mat{channels[3], channels[3], channels[3]}, &alpha)

	a := gocv.NewMat()
	defer a.Close()
	alpha.ConvertToWithParams(&a, gocv.MatTypeCV32FC3, 1.0/255, 0)

	fgF := gocv.NewMat()
	defer fgF.Close()
	fg.ConvertTo(&fgF, gocv.MatTypeCV32FC3)

	bgF := gocv.NewMat()
	defer bgF.Close()
	roi.ConvertTo(&bgF, gocv.MatTypeCV32FC3)

	// out = bg + a*(fg - bg)
	blend := gocv.NewMat()
	defer blend.Close()
	gocv.Subtract(fgF, bgF, &blend)
	gocv.Multiply(blend, a, &blend)
	gocv.Add(bgF, blend, &blend)

	out := gocv.NewMat()
	defer out.Close()
	blend.ConvertTo(&out, gocv.MatTypeCV8UC3)
	out.CopyTo(&roi)
}
