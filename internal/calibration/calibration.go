// Package calibration converts a pixel-space hand span into an estimated
// camera distance in centimeters using a quadratic fit to empirical samples.
package calibration

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MinSamples is the number of distinct raw distances a quadratic fit needs.
const MinSamples = 3

// ErrCalibration is matched by every error returned from Fit.
var ErrCalibration = errors.New("calibration failed")

// Error describes why a calibration table could not be fitted.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calibration: %s: %v", e.Reason, e.Err)
	}
	return "calibration: " + e.Reason
}

// Is reports ErrCalibration so callers can use errors.Is without the concrete type.
func (e *Error) Is(target error) bool {
	return target == ErrCalibration
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Sample is one measured pair: the knuckle span in pixels and the
// tape-measured distance of the hand from the camera.
type Sample struct {
	Raw float64 `toml:"raw"`
	CM  float64 `toml:"cm"`
}

// Table is an ordered set of calibration samples.
type Table []Sample

// DefaultTable returns the samples measured for the index-to-pinky MCP span
// on a 1280x720 webcam.
func DefaultTable() Table {
	raw := []float64{240, 188, 161, 125, 110, 98, 90, 85, 75, 64, 62, 57, 52, 50, 47, 44, 43}
	cm := []float64{20, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 100}

	t := make(Table, len(raw))
	for i := range raw {
		t[i] = Sample{Raw: raw[i], CM: cm[i]}
	}
	return t
}

// Model holds the coefficients of cm = A*raw^2 + B*raw + C.
type Model struct {
	A, B, C float64
}

// Fit computes the least-squares quadratic through the table.
func Fit(table Table) (Model, error) {
	if len(table) < MinSamples {
		return Model{}, &Error{Reason: fmt.Sprintf("need at least %d samples, got %d", MinSamples, len(table))}
	}

	distinct := make(map[float64]struct{}, len(table))
	for _, s := range table {
		if math.IsNaN(s.Raw) || math.IsInf(s.Raw, 0) || math.IsNaN(s.CM) || math.IsInf(s.CM, 0) {
			return Model{}, &Error{Reason: fmt.Sprintf("non-finite sample %v", s)}
		}
		distinct[s.Raw] = struct{}{}
	}
	if len(distinct) < MinSamples {
		return Model{}, &Error{Reason: fmt.Sprintf("need at least %d distinct raw distances, got %d", MinSamples, len(distinct))}
	}

	// Vandermonde system with columns raw^2, raw, 1.
	n := len(table)
	x := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, nil)
	for i, s := range table {
		x.Set(i, 0, s.Raw*s.Raw)
		x.Set(i, 1, s.Raw)
		x.Set(i, 2, 1)
		y.SetVec(i, s.CM)
	}

	var qr mat.QR
	qr.Factorize(x)

	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, y); err != nil {
		return Model{}, &Error{Reason: "singular fit", Err: err}
	}

	m := Model{A: coef.AtVec(0), B: coef.AtVec(1), C: coef.AtVec(2)}
	for _, v := range []float64{m.A, m.B, m.C} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Model{}, &Error{Reason: "non-finite coefficients"}
		}
	}
	return m, nil
}

// Estimate evaluates the polynomial. Out-of-range inputs may produce
// implausible distances; callers compare against their own thresholds.
func (m Model) Estimate(raw float64) float64 {
	return m.A*raw*raw + m.B*raw + m.C
}

// Vertex returns the raw distance where the parabola turns. For a convex
// fit the estimate decreases monotonically for all raw values below it.
// It returns +Inf when A is zero.
func (m Model) Vertex() float64 {
	if m.A == 0 {
		return math.Inf(1)
	}
	return -m.B / (2 * m.A)
}

func (m Model) String() string {
	return fmt.Sprintf("cm = %.6g*d^2 %+.6g*d %+.6g", m.A, m.B, m.C)
}

// RawDistance is the Euclidean span between two landmarks, truncated to a
// whole pixel. The samples in DefaultTable were recorded with truncated spans.
func RawDistance(p1, p2 image.Point) float64 {
	dx := float64(p2.X - p1.X)
	dy := float64(p2.Y - p1.Y)
	return math.Trunc(math.Sqrt(dx*dx + dy*dy))
}

// Estimator applies a fitted model to landmark pairs.
type Estimator struct {
	model Model
}

// NewEstimator fits the table once and returns an estimator bound to the result.
func NewEstimator(table Table) (*Estimator, error) {
	m, err := Fit(table)
	if err != nil {
		return nil, err
	}
	return &Estimator{model: m}, nil
}

// Model returns the fitted coefficients.
func (e *Estimator) Model() Model {
	return e.model
}

// Distance returns the estimated distance in centimeters for the span between p1 and p2.
func (e *Estimator) Distance(p1, p2 image.Point) float64 {
	return e.model.Estimate(RawDistance(p1, p2))
}
