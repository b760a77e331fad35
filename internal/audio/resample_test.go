package audio

import (
	"math"
	"testing"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

const testRate = 8000

func sineBuffer(t *testing.T, freq, seconds float64, channels int) *models.Buffer {
	t.Helper()
	n := int(seconds * testRate)
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, n)
		for i := range data[c] {
			data[c][i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/testRate))
		}
	}
	return models.NewBuffer(testRate, data)
}

func TestSliceWindow(t *testing.T) {
	src := sineBuffer(t, 440, 10, 2)
	out := Slice(src, 2, 3)

	if want := 3 * testRate; out.NumFrames() != want {
		t.Errorf("NumFrames = %d, want %d", out.NumFrames(), want)
	}
	if out.NumChannels() != 2 {
		t.Errorf("NumChannels = %d, want 2", out.NumChannels())
	}
	first := 2 * testRate
	for i := 0; i < 100; i++ {
		if out.Channel(0)[i] != src.Channel(0)[first+i] {
			t.Fatalf("frame %d not copied from offset %d", i, first+i)
		}
	}
}

func TestSliceClampsToSource(t *testing.T) {
	src := sineBuffer(t, 440, 5, 1)

	past := Slice(src, 4, 10)
	if want := testRate; past.NumFrames() != want {
		t.Errorf("over-long slice: NumFrames = %d, want %d", past.NumFrames(), want)
	}
	neg := Slice(src, -2, 3)
	if want := 3 * testRate; neg.NumFrames() != want {
		t.Errorf("negative start: NumFrames = %d, want %d", neg.NumFrames(), want)
	}
	beyond := Slice(src, 20, 5)
	if beyond.NumFrames() != 0 {
		t.Errorf("slice past the end: NumFrames = %d, want 0", beyond.NumFrames())
	}
}

func TestSliceDoesNotAliasSource(t *testing.T) {
	src := sineBuffer(t, 440, 2, 1)
	out := Slice(src, 0, 1)
	out.Channel(0)[0] = 9
	if src.Channel(0)[0] == 9 {
		t.Error("slice shares backing storage with the source")
	}
}

func TestRateIdentity(t *testing.T) {
	src := sineBuffer(t, 440, 2, 1)
	if Rate(src, 1.0) != src {
		t.Error("rate 1.0 should return the source unchanged")
	}
	if Rate(src, 0) != src {
		t.Error("non-positive rate should return the source unchanged")
	}
}

func TestRateChangesLength(t *testing.T) {
	src := sineBuffer(t, 440, 4, 2)
	n := src.NumFrames()

	cases := []struct {
		rate float64
		want int
	}{
		{2.0, n / 2},
		{0.5, n * 2},
		{1.25, int(float64(n) / 1.25)},
	}
	for _, tc := range cases {
		out := Rate(src, tc.rate)
		if out.NumFrames() != tc.want {
			t.Errorf("rate %.2f: NumFrames = %d, want %d", tc.rate, out.NumFrames(), tc.want)
		}
		if out.NumChannels() != src.NumChannels() {
			t.Errorf("rate %.2f: channel count changed", tc.rate)
		}
		if out.SampleRate() != src.SampleRate() {
			t.Errorf("rate %.2f: sample rate changed", tc.rate)
		}
	}
}

func TestRatePreservesWaveShape(t *testing.T) {
	// Playing a 440Hz tone at double speed yields an 880Hz tone. Check
	// against the analytic signal away from the edges.
	src := sineBuffer(t, 440, 2, 1)
	out := Rate(src, 2.0)

	for i := 100; i < out.NumFrames()-100; i++ {
		want := 0.5 * math.Sin(2*math.Pi*880*float64(i)/testRate)
		if got := float64(out.Channel(0)[i]); math.Abs(got-want) > 0.01 {
			t.Fatalf("frame %d: got %v, want %v", i, got, want)
		}
	}
}
