// Package render executes a planned timeline against an offline,
// sample-accurate processing graph: two sources, each through an input
// gain, role-default EQ, mid peaking filter and compressor, summed into
// a stereo output buffer. All parameter movement is expressed as
// automation curves built from the timeline before any audio is
// touched.
package render

import "sort"

// Interp selects how a control point is approached from the previous
// point.
type Interp int

const (
	// InterpStep holds the previous value until the point's time.
	InterpStep Interp = iota
	// InterpLinear ramps linearly from the previous point.
	InterpLinear
)

// ControlPoint is one (time, value) pair on an automation curve.
type ControlPoint struct {
	Time   float64
	Value  float64
	Interp Interp
}

// Curve is an ordered set of control points for a single parameter.
// Points are kept monotonic in time: a point added before the last
// point's time is clamped onto it.
type Curve struct {
	points []ControlPoint
}

// NewCurve returns a curve holding initial from time zero.
func NewCurve(initial float64) *Curve {
	return &Curve{points: []ControlPoint{{Time: 0, Value: initial, Interp: InterpStep}}}
}

// Set places a step control point at t.
func (c *Curve) Set(t, v float64) { c.add(ControlPoint{Time: t, Value: v, Interp: InterpStep}) }

// RampTo places a linear ramp target at t.
func (c *Curve) RampTo(t, v float64) {
	c.add(ControlPoint{Time: t, Value: v, Interp: InterpLinear})
}

func (c *Curve) add(p ControlPoint) {
	if n := len(c.points); n > 0 && p.Time < c.points[n-1].Time {
		p.Time = c.points[n-1].Time
	}
	c.points = append(c.points, p)
}

// Points returns the underlying control points.
func (c *Curve) Points() []ControlPoint { return c.points }

// ValueAt evaluates the curve at t. Before the first point the first
// value holds; after the last, the last value holds.
func (c *Curve) ValueAt(t float64) float64 {
	n := len(c.points)
	if n == 0 {
		return 0
	}
	if t <= c.points[0].Time {
		return c.points[0].Value
	}
	if t >= c.points[n-1].Time {
		return c.points[n-1].Value
	}
	// first point with Time > t
	i := sort.Search(n, func(k int) bool { return c.points[k].Time > t })
	return interpolate(c.points[i-1], c.points[i], t)
}

func interpolate(a, b ControlPoint, t float64) float64 {
	if b.Interp == InterpStep || b.Time <= a.Time {
		return a.Value
	}
	frac := (t - a.Time) / (b.Time - a.Time)
	return a.Value + (b.Value-a.Value)*frac
}

// walker evaluates a curve at non-decreasing times in O(1) amortized,
// for per-sample use inside the render loop.
type walker struct {
	c   *Curve
	idx int
}

func (c *Curve) walker() *walker { return &walker{c: c} }

func (w *walker) value(t float64) float64 {
	pts := w.c.points
	n := len(pts)
	if n == 0 {
		return 0
	}
	for w.idx+1 < n && pts[w.idx+1].Time <= t {
		w.idx++
	}
	if w.idx+1 >= n {
		return pts[n-1].Value
	}
	if t <= pts[0].Time {
		return pts[0].Value
	}
	return interpolate(pts[w.idx], pts[w.idx+1], t)
}
