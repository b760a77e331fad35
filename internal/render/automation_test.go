package render

import (
	"math"
	"testing"
)

func TestCurveInitialValueHolds(t *testing.T) {
	c := NewCurve(0.7)
	for _, at := range []float64{0, 1, 100} {
		if v := c.ValueAt(at); v != 0.7 {
			t.Errorf("ValueAt(%.0f) = %v, want 0.7", at, v)
		}
	}
}

func TestCurveStep(t *testing.T) {
	c := NewCurve(0)
	c.Set(5, 1)

	if v := c.ValueAt(4.999); v != 0 {
		t.Errorf("ValueAt just before the step = %v, want 0", v)
	}
	if v := c.ValueAt(5); v != 1 {
		t.Errorf("ValueAt at the step = %v, want 1", v)
	}
	if v := c.ValueAt(50); v != 1 {
		t.Errorf("ValueAt past the step = %v, want 1", v)
	}
}

func TestCurveRamp(t *testing.T) {
	c := NewCurve(0)
	c.RampTo(10, 1)

	cases := []struct{ at, want float64 }{
		{0, 0}, {2.5, 0.25}, {5, 0.5}, {10, 1}, {20, 1},
	}
	for _, tc := range cases {
		if v := c.ValueAt(tc.at); math.Abs(v-tc.want) > 1e-12 {
			t.Errorf("ValueAt(%.1f) = %v, want %v", tc.at, v, tc.want)
		}
	}
}

func TestCurveClampsBackwardsTime(t *testing.T) {
	c := NewCurve(0)
	c.Set(5, 1)
	c.Set(3, 2) // earlier than the last point

	pts := c.Points()
	last := pts[len(pts)-1]
	if last.Time != 5 {
		t.Errorf("backwards point landed at %.1f, want clamped to 5", last.Time)
	}
	if v := c.ValueAt(5); v != 2 {
		t.Errorf("ValueAt(5) = %v, want the clamped point's value 2", v)
	}
	if v := c.ValueAt(4.9); v != 0 {
		t.Errorf("ValueAt(4.9) = %v, want 0", v)
	}
}

func TestWalkerMatchesValueAt(t *testing.T) {
	c := NewCurve(1)
	c.RampTo(2, 0.5)
	c.Set(4, 0.9)
	c.RampTo(8, 0)
	c.Set(8, 0.3)

	w := c.walker()
	for at := 0.0; at <= 10; at += 0.01 {
		got := w.value(at)
		want := c.ValueAt(at)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("walker.value(%.2f) = %v, ValueAt = %v", at, got, want)
		}
	}
}

func TestEntryDelayBounds(t *testing.T) {
	cases := []struct{ tempo, want float64 }{
		{120, 1.0},
		{60, 2.0},
		{30, 2.0},   // capped
		{500, 0.25}, // floored
		{0, 1.0},    // unknown tempo treated as 120
	}
	for _, tc := range cases {
		if d := entryDelay(tc.tempo); math.Abs(d-tc.want) > 1e-12 {
			t.Errorf("entryDelay(%.0f) = %v, want %v", tc.tempo, d, tc.want)
		}
	}
}
