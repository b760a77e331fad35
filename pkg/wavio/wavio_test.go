package wavio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ishatailor/AI-DJ/internal/audio"
	"github.com/ishatailor/AI-DJ/pkg/models"
)

func toneBuffer(t *testing.T, sampleRate int, seconds float64) *models.Buffer {
	t.Helper()
	n := int(seconds * float64(sampleRate))
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(0.4 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}
	return models.NewBuffer(sampleRate, [][]float32{samples})
}

func TestWriteFileRoundTrip(t *testing.T) {
	src := toneBuffer(t, 8000, 1)
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WriteFile(path, src); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening written file: %v", err)
	}
	defer f.Close()
	got, err := audio.DecodeWAV(f)
	if err != nil {
		t.Fatalf("decoding written file: %v", err)
	}

	if got.SampleRate() != 8000 {
		t.Errorf("SampleRate = %d, want 8000", got.SampleRate())
	}
	if got.NumFrames() != src.NumFrames() {
		t.Fatalf("NumFrames = %d, want %d", got.NumFrames(), src.NumFrames())
	}
	const tol = 2.0 / 32768
	in, out := src.Channel(0), got.Channel(0)
	for i := range in {
		if d := math.Abs(float64(in[i] - out[i])); d > tol {
			t.Fatalf("frame %d: round-trip error %v exceeds 16-bit tolerance", i, d)
		}
	}
}

func TestPCM16Clips(t *testing.T) {
	cases := []struct {
		in   float32
		want int
	}{
		{2.0, 32767},
		{1.0, 32767},
		{-1.0, -32768},
		{-2.0, -32768},
		{0, 0},
	}
	for _, tc := range cases {
		if got := pcm16(tc.in); got != tc.want {
			t.Errorf("pcm16(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
