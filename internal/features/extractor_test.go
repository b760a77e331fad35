package features

import (
	"math"
	"testing"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

const testRate = 8000

// sine generates a mono sine segment.
func sine(freq, amp, seconds float64) []float32 {
	n := int(seconds * testRate)
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/testRate))
	}
	return out
}

func concat(parts ...[]float32) []float32 {
	var out []float32
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func monoBuffer(samples []float32) *models.Buffer {
	return models.NewBuffer(testRate, [][]float32{samples})
}

func TestDetectBassDrop(t *testing.T) {
	// Heavy sub-200Hz content for 3s, then nearly gone.
	samples := concat(sine(100, 0.8, 3), sine(100, 0.05, 3))

	drop := DetectBassDrop(samples, testRate, 0, 6)
	if drop == nil {
		t.Fatal("Expected a bass drop, got nil")
	}
	if drop.Kind != models.FeatureBassDrop {
		t.Errorf("Wrong kind: %s", drop.Kind)
	}
	if drop.Time < 2.0 || drop.Time > 3.5 {
		t.Errorf("Drop found at %.2fs, expected near 3.0s", drop.Time)
	}
	if drop.Intensity <= 2.0 {
		t.Errorf("Drop intensity %.2f should exceed the 2.0 ratio", drop.Intensity)
	}
}

func TestDetectBassDropSteadySignal(t *testing.T) {
	samples := sine(100, 0.5, 6)
	if drop := DetectBassDrop(samples, testRate, 0, 6); drop != nil {
		t.Errorf("Steady bass should yield no drop, got one at %.2fs", drop.Time)
	}
}

func TestDetectVocalPeaks(t *testing.T) {
	// 1kHz sits inside the 300-3000Hz vocal band.
	samples := sine(1000, 0.5, 4)

	peaks := DetectVocalPeaks(samples, testRate, 0, 4)
	if len(peaks) == 0 {
		t.Fatal("Expected vocal peaks in a 1kHz tone")
	}
	if len(peaks) > 3 {
		t.Errorf("Expected at most 3 peaks, got %d", len(peaks))
	}
	for _, p := range peaks {
		if p.Kind != models.FeatureVocalPeak {
			t.Errorf("Wrong kind: %s", p.Kind)
		}
		if p.Intensity <= 0.01 {
			t.Errorf("Peak intensity %.4f below threshold", p.Intensity)
		}
	}
}

func TestDetectVocalPeaksIgnoresBass(t *testing.T) {
	// 60Hz is below the vocal band and the band-pass difference
	// should reject it.
	samples := sine(60, 0.5, 4)
	if peaks := DetectVocalPeaks(samples, testRate, 0, 4); len(peaks) != 0 {
		t.Errorf("Expected no vocal peaks in a 60Hz tone, got %d", len(peaks))
	}
}

func TestDetectEnergyValleys(t *testing.T) {
	// Loud, quiet gap, loud.
	samples := concat(sine(440, 0.5, 3), sine(440, 0.02, 2), sine(440, 0.5, 3))

	valleys := DetectEnergyValleys(samples, testRate, 0, 8)
	if len(valleys) == 0 {
		t.Fatal("Expected valleys inside the quiet gap")
	}
	if len(valleys) > 3 {
		t.Errorf("Expected at most 3 valleys, got %d", len(valleys))
	}
	for i, v := range valleys {
		if v.Intensity >= 0.005 {
			t.Errorf("Valley %d energy %.5f not below threshold", i, v.Intensity)
		}
		if v.Time < 2.5 || v.Time > 5.0 {
			t.Errorf("Valley %d at %.2fs outside the quiet gap", i, v.Time)
		}
		if i > 0 && valleys[i].Intensity < valleys[i-1].Intensity {
			t.Error("Valleys not sorted quietest first")
		}
	}
}

func TestDetectBuildUps(t *testing.T) {
	// Linear amplitude ramp over 6 seconds.
	n := 6 * testRate
	samples := make([]float32, n)
	for i := range samples {
		amp := 0.1 + 0.8*float64(i)/float64(n)
		samples[i] = float32(amp * math.Sin(2*math.Pi*440*float64(i)/testRate))
	}

	builds := DetectBuildUps(samples, testRate, 0, 6)
	if len(builds) == 0 {
		t.Fatal("Expected build-ups in a rising ramp")
	}
	if len(builds) > 3 {
		t.Errorf("Expected at most 3 build-ups, got %d", len(builds))
	}
	for _, b := range builds {
		if b.Intensity <= 0.1 {
			t.Errorf("Build-up rate %.3f below minimum", b.Intensity)
		}
	}
}

func TestDetectBuildUpsFlatSignal(t *testing.T) {
	samples := sine(440, 0.5, 6)
	if builds := DetectBuildUps(samples, testRate, 0, 6); len(builds) != 0 {
		t.Errorf("Flat signal should yield no build-ups, got %d", len(builds))
	}
}

func TestDetectDropPoints(t *testing.T) {
	samples := concat(sine(440, 0.8, 3), sine(440, 0.3, 3))

	drops := DetectDropPoints(samples, testRate, 0, 6)
	if len(drops) == 0 {
		t.Fatal("Expected drop points at the level step")
	}
	for _, d := range drops {
		if d.Intensity <= 1.5 {
			t.Errorf("Drop ratio %.2f below threshold", d.Intensity)
		}
		if d.Time < 2.0 || d.Time > 3.5 {
			t.Errorf("Drop at %.2fs, expected near 3.0s", d.Time)
		}
	}
}

func TestDetectBreakdowns(t *testing.T) {
	samples := concat(sine(440, 0.5, 3), sine(440, 0.02, 3), sine(440, 0.5, 3))

	breakdowns := DetectBreakdowns(samples, testRate, 0, 9)
	if len(breakdowns) == 0 {
		t.Fatal("Expected a breakdown in the quiet region")
	}
	if len(breakdowns) > 3 {
		t.Errorf("Expected at most 3 breakdowns, got %d", len(breakdowns))
	}
	for _, b := range breakdowns {
		if b.Intensity < 0.6 {
			t.Errorf("Breakdown quiet fraction %.2f below 60%%", b.Intensity)
		}
		if b.Time < 2.0 || b.Time > 6.0 {
			t.Errorf("Breakdown at %.2fs outside the quiet region", b.Time)
		}
	}
}

func TestExtractShortBuffer(t *testing.T) {
	// Shorter than every detector window: all detectors must come
	// back empty rather than erroring.
	set := Extract(monoBuffer(sine(440, 0.5, 0.2)), 120)

	if set.BassDrop != nil {
		t.Error("BassDrop should be nil for a sub-window buffer")
	}
	if len(set.VocalPeaks)+len(set.EnergyValleys)+len(set.BuildUps)+
		len(set.DropPoints)+len(set.Breakdowns) != 0 {
		t.Error("All detections should be empty for a sub-window buffer")
	}
}

func TestExtractScanWindow(t *testing.T) {
	// Bass drop at 8s; a 10s mix scans only the first 6s, so the
	// drop must not be found.
	samples := concat(sine(100, 0.8, 8), sine(100, 0.05, 4))
	set := Extract(monoBuffer(samples), 10)
	if set.BassDrop != nil {
		t.Errorf("Drop at %.2fs found beyond the scan window", set.BassDrop.Time)
	}

	// A 20s mix scans 12s and sees it.
	set = Extract(monoBuffer(samples), 20)
	if set.BassDrop == nil {
		t.Error("Drop inside the scan window not found")
	}
}
