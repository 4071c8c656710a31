package calibration

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit_MinimalTable(t *testing.T) {
	t.Parallel()

	table := Table{{Raw: 240, CM: 20}, {Raw: 188, CM: 25}, {Raw: 161, CM: 30}}
	m, err := Fit(table)
	require.NoError(t, err)

	assert.InDelta(t, 20, m.Estimate(240), 1)
	assert.InDelta(t, 25, m.Estimate(188), 1)
	assert.InDelta(t, 30, m.Estimate(161), 1)

	// Three points determine the parabola exactly; its vertex lies past 240.
	assert.Greater(t, m.Vertex(), 240.0)
	prev := m.Estimate(161)
	for d := 162.0; d <= 240; d++ {
		got := m.Estimate(d)
		assert.Less(t, got, prev, "estimate must decrease at d=%v", d)
		prev = got
	}
}

func TestFit_DefaultTable(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	require.Len(t, table, 17)

	m, err := Fit(table)
	require.NoError(t, err)
	assert.Greater(t, m.A, 0.0, "fit should be convex")

	worst := table[0]
	for _, s := range table {
		assert.InDelta(t, s.CM, m.Estimate(s.Raw), 10, "sample raw=%v", s.Raw)
		if math.Abs(m.Estimate(s.Raw)-s.CM) > math.Abs(m.Estimate(worst.Raw)-worst.CM) {
			worst = s
		}
	}
	// The farthest sample sits above the parabola's tail.
	assert.Equal(t, 43.0, worst.Raw)
	assert.InDelta(t, -9.37, m.Estimate(worst.Raw)-worst.CM, 0.01)

	vertex := m.Vertex()
	assert.InDelta(t, 194, vertex, 2)

	prev := m.Estimate(43)
	for d := 44.0; d < math.Floor(vertex); d++ {
		got := m.Estimate(d)
		assert.Less(t, got, prev, "estimate must decrease at d=%v", d)
		prev = got
	}

	// Under 40 cm starts somewhere between the 35 and 45 cm samples.
	assert.Less(t, m.Estimate(125), 40.0)
	assert.Greater(t, m.Estimate(98), 40.0)
}

func TestFit_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table Table
	}{
		{name: "empty", table: nil},
		{name: "one sample", table: Table{{Raw: 100, CM: 40}}},
		{name: "two samples", table: Table{{Raw: 100, CM: 40}, {Raw: 50, CM: 80}}},
		{name: "identical raw", table: Table{{Raw: 100, CM: 40}, {Raw: 100, CM: 45}, {Raw: 100, CM: 50}}},
		{name: "two distinct raw", table: Table{{Raw: 100, CM: 40}, {Raw: 100, CM: 45}, {Raw: 60, CM: 70}, {Raw: 60, CM: 72}}},
		{name: "nan", table: Table{{Raw: math.NaN(), CM: 40}, {Raw: 90, CM: 45}, {Raw: 60, CM: 70}}},
		{name: "inf", table: Table{{Raw: 120, CM: math.Inf(1)}, {Raw: 90, CM: 45}, {Raw: 60, CM: 70}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Fit(tt.table)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCalibration), "error %v should match ErrCalibration", err)

			var calErr *Error
			assert.True(t, errors.As(err, &calErr))
		})
	}
}

func TestEstimate_Pure(t *testing.T) {
	t.Parallel()

	m := Model{A: 1, B: -2, C: 3}
	assert.Equal(t, 3.0, m.Estimate(0))
	assert.Equal(t, 2.0, m.Estimate(1))
	assert.Equal(t, 83.0, m.Estimate(10))
	// No clamping for out-of-range inputs.
	assert.Equal(t, 6.0, m.Estimate(-1))
	assert.Equal(t, "cm = 1*d^2 -2*d +3", m.String())
}

func TestVertex_Linear(t *testing.T) {
	t.Parallel()

	assert.True(t, math.IsInf(Model{B: -1, C: 10}.Vertex(), 1))
}

func TestRawDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		p1, p2 image.Point
		want   float64
	}{
		{name: "same point", p1: image.Pt(10, 10), p2: image.Pt(10, 10), want: 0},
		{name: "3-4-5", p1: image.Pt(0, 0), p2: image.Pt(3, 4), want: 5},
		{name: "truncates diagonal", p1: image.Pt(0, 0), p2: image.Pt(1, 1), want: 1},
		{name: "truncates not rounds", p1: image.Pt(0, 0), p2: image.Pt(2, 2), want: 2},
		{name: "order independent", p1: image.Pt(103, 54), p2: image.Pt(0, 0), want: 116},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RawDistance(tt.p1, tt.p2))
		})
	}
}

func TestEstimator_Distance(t *testing.T) {
	t.Parallel()

	est, err := NewEstimator(Table{{Raw: 240, CM: 20}, {Raw: 188, CM: 25}, {Raw: 161, CM: 30}})
	require.NoError(t, err)

	// A 240.9 px span truncates to 240 before the polynomial is applied.
	got := est.Distance(image.Pt(0, 0), image.Pt(240, 21))
	assert.Equal(t, est.Model().Estimate(240), got)
	assert.InDelta(t, 20, got, 1)

	_, err = NewEstimator(Table{{Raw: 1, CM: 1}})
	assert.ErrorIs(t, err, ErrCalibration)
}
