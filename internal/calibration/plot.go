package calibration

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot draws the samples and the fitted curve over the sampled span range.
// The image format follows the file extension (png, svg, pdf, ...).
func Plot(table Table, model Model, path string) error {
	p := plot.New()
	p.Title.Text = "Hand distance calibration"
	p.X.Label.Text = "Knuckle span (px)"
	p.Y.Label.Text = "Distance (cm)"

	pts := make(plotter.XYs, 0, len(table))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range table {
		pts = append(pts, plotter.XY{X: s.Raw, Y: s.CM})
		lo = min(lo, s.Raw)
		hi = max(hi, s.Raw)
	}
	if len(pts) == 0 {
		return &Error{Reason: "no samples to plot"}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("plot samples: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)
	p.Legend.Add("samples", scatter)

	fit := plotter.NewFunction(model.Estimate)
	fit.XMin, fit.XMax = lo, hi
	fit.Samples = 200
	fit.Color = color.RGBA{R: 200, A: 255}
	fit.Width = vg.Points(1)
	p.Add(fit)
	p.Legend.Add(model.String(), fit)

	p.Legend.Top = true
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
