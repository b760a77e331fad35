package timeline

import (
	"math"
	"reflect"
	"testing"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

func point(kind models.FeatureKind, at, intensity float64) models.FeaturePoint {
	return models.FeaturePoint{Time: at, Intensity: intensity, Kind: kind}
}

func checkContiguous(t *testing.T, tl models.Timeline) {
	t.Helper()
	if len(tl.Sections) == 0 {
		t.Fatal("timeline has no sections")
	}
	if tl.Sections[0].Start != 0 {
		t.Fatalf("first section starts at %.3f, want 0", tl.Sections[0].Start)
	}
	for i := 1; i < len(tl.Sections); i++ {
		prev, cur := tl.Sections[i-1], tl.Sections[i]
		if math.Abs(prev.End-cur.Start) > 1e-9 {
			t.Fatalf("gap between %q (end %.3f) and %q (start %.3f)",
				prev.Name, prev.End, cur.Name, cur.Start)
		}
		if cur.End <= cur.Start {
			t.Fatalf("section %q has non-positive length [%.3f, %.3f]", cur.Name, cur.Start, cur.End)
		}
	}
	last := tl.Sections[len(tl.Sections)-1]
	if math.Abs(last.End-tl.Duration) > 1e-9 {
		t.Fatalf("last section ends at %.3f, want duration %.3f", last.End, tl.Duration)
	}
}

func sectionNames(tl models.Timeline) []string {
	names := make([]string, len(tl.Sections))
	for i, s := range tl.Sections {
		names[i] = s.Name
	}
	return names
}

func hasSection(tl models.Timeline, name string) bool {
	for _, s := range tl.Sections {
		if s.Name == name {
			return true
		}
	}
	return false
}

func TestPlanScoreFallback(t *testing.T) {
	// No usable features on either side: a score of 85 puts track 2's
	// entry at 30% of the mix.
	rep := models.CompatibilityReport{Score: 85}
	tl := Plan(models.FeatureSet{}, models.FeatureSet{}, rep, 120)

	if tl.Track2Start != 36 {
		t.Errorf("Track2Start = %.1f, want 36", tl.Track2Start)
	}
	if tl.CrossfadeStart != 38 {
		t.Errorf("CrossfadeStart = %.1f, want 38", tl.CrossfadeStart)
	}
	if tl.CrossfadeDuration != 10 {
		t.Errorf("CrossfadeDuration = %.1f, want the 10s cap", tl.CrossfadeDuration)
	}
	checkContiguous(t, tl)
	want := []string{"intro", "transition", "crossfade", "outro"}
	if got := sectionNames(tl); !reflect.DeepEqual(got, want) {
		t.Errorf("sections = %v, want %v", got, want)
	}
}

func TestPlanScoreBrackets(t *testing.T) {
	cases := []struct {
		score int
		want  float64
	}{
		{85, 36}, // > 70: enter at 30%
		{55, 48}, // > 40: enter at 40%
		{30, 72}, // low: enter at 60%
	}
	for _, tc := range cases {
		tl := Plan(models.FeatureSet{}, models.FeatureSet{}, models.CompatibilityReport{Score: tc.score}, 120)
		if tl.Track2Start != tc.want {
			t.Errorf("score %d: Track2Start = %.1f, want %.1f", tc.score, tl.Track2Start, tc.want)
		}
	}
}

func TestPlanAlignedBassDrops(t *testing.T) {
	// Drops at 10s and 4s line up when track 2 enters at 6s.
	drop1 := point(models.FeatureBassDrop, 10.0, 3.0)
	drop2 := point(models.FeatureBassDrop, 4.0, 2.5)
	featA := models.FeatureSet{BassDrop: &drop1}
	featB := models.FeatureSet{BassDrop: &drop2}

	tl := Plan(featA, featB, models.CompatibilityReport{Score: 50}, 120)
	if tl.Track2Start != 6 {
		t.Errorf("Track2Start = %.1f, want 6", tl.Track2Start)
	}
	checkContiguous(t, tl)
}

func TestPlanBassDropAnchorClamped(t *testing.T) {
	drop1 := point(models.FeatureBassDrop, 110.0, 3.0)
	drop2 := point(models.FeatureBassDrop, 1.0, 2.5)
	featA := models.FeatureSet{BassDrop: &drop1}
	featB := models.FeatureSet{BassDrop: &drop2}

	tl := Plan(featA, featB, models.CompatibilityReport{Score: 50}, 120)
	if tl.Track2Start != 72 {
		t.Errorf("Track2Start = %.1f, want the 60%% clamp at 72", tl.Track2Start)
	}
	checkContiguous(t, tl)
}

func TestPlanBuildUpMeetsDropPoint(t *testing.T) {
	featA := models.FeatureSet{BuildUps: []models.FeaturePoint{point(models.FeatureBuildUp, 20, 0.5)}}
	featB := models.FeatureSet{DropPoints: []models.FeaturePoint{point(models.FeatureDropPoint, 5, 2.0)}}

	tl := Plan(featA, featB, models.CompatibilityReport{Score: 50}, 120)
	if tl.Track2Start != 15 {
		t.Errorf("Track2Start = %.1f, want 15", tl.Track2Start)
	}
	if !hasSection(tl, "build-up") {
		t.Errorf("expected a build-up section, got %v", sectionNames(tl))
	}
	checkContiguous(t, tl)
}

func TestPlanVocalOverlayOnlyWhenBothHavePeaks(t *testing.T) {
	peaks := []models.FeaturePoint{point(models.FeatureVocalPeak, 12, 0.3)}
	rep := models.CompatibilityReport{Score: 85}

	both := Plan(models.FeatureSet{VocalPeaks: peaks}, models.FeatureSet{VocalPeaks: peaks}, rep, 120)
	if !both.HasVocalOverlay() {
		t.Error("expected a vocal overlay when both tracks have vocal peaks")
	}
	if !hasSection(both, "vocal-overlay") {
		t.Errorf("missing vocal-overlay section: %v", sectionNames(both))
	}
	checkContiguous(t, both)

	one := Plan(models.FeatureSet{VocalPeaks: peaks}, models.FeatureSet{}, rep, 120)
	if one.HasVocalOverlay() {
		t.Error("vocal overlay scheduled with peaks on only one track")
	}
	if hasSection(one, "vocal-overlay") {
		t.Errorf("unexpected vocal-overlay section: %v", sectionNames(one))
	}
}

func TestPlanVocalOverlayInsideCrossfade(t *testing.T) {
	peaks := []models.FeaturePoint{point(models.FeatureVocalPeak, 12, 0.3)}
	tl := Plan(models.FeatureSet{VocalPeaks: peaks}, models.FeatureSet{VocalPeaks: peaks},
		models.CompatibilityReport{Score: 85}, 120)

	voEnd := tl.VocalOverlayStart + tl.VocalOverlayDuration
	cfEnd := tl.CrossfadeStart + tl.CrossfadeDuration
	if tl.VocalOverlayStart < tl.CrossfadeStart || voEnd > cfEnd+1e-9 {
		t.Errorf("overlay [%.2f, %.2f] not inside crossfade [%.2f, %.2f]",
			tl.VocalOverlayStart, voEnd, tl.CrossfadeStart, cfEnd)
	}
}

func TestPlanBreakdownAfterCrossfade(t *testing.T) {
	featB := models.FeatureSet{Breakdowns: []models.FeaturePoint{point(models.FeatureBreakdown, 30, 0.8)}}
	tl := Plan(models.FeatureSet{}, featB, models.CompatibilityReport{Score: 85}, 120)

	if !hasSection(tl, "breakdown") {
		t.Fatalf("expected a breakdown section, got %v", sectionNames(tl))
	}
	for _, s := range tl.Sections {
		if s.Name == "breakdown" {
			if s.Start != tl.CrossfadeStart+tl.CrossfadeDuration {
				t.Errorf("breakdown starts at %.2f, want crossfade end %.2f",
					s.Start, tl.CrossfadeStart+tl.CrossfadeDuration)
			}
			if s.Track != models.SectionTrack2 {
				t.Errorf("breakdown on %s, want track2", s.Track)
			}
		}
	}
	checkContiguous(t, tl)
}

func TestPlanContiguityAcrossCombos(t *testing.T) {
	drop := point(models.FeatureBassDrop, 40, 3.0)
	feats := []models.FeatureSet{
		{},
		{BassDrop: &drop},
		{VocalPeaks: []models.FeaturePoint{point(models.FeatureVocalPeak, 10, 0.3)}},
		{BuildUps: []models.FeaturePoint{point(models.FeatureBuildUp, 25, 0.4)}},
		{Breakdowns: []models.FeaturePoint{point(models.FeatureBreakdown, 50, 0.7)}},
		{DropPoints: []models.FeaturePoint{point(models.FeatureDropPoint, 8, 2.0)}},
	}
	scores := []int{10, 45, 85}
	durations := []float64{30, 120, 240}

	for _, fa := range feats {
		for _, fb := range feats {
			for _, score := range scores {
				for _, dur := range durations {
					tl := Plan(fa, fb, models.CompatibilityReport{Score: score}, dur)
					checkContiguous(t, tl)
					if tl.Track2Start > dur*0.6+1e-9 {
						t.Fatalf("Track2Start %.2f exceeds 60%% of %.0f", tl.Track2Start, dur)
					}
				}
			}
		}
	}
}

func TestPlanDeterministic(t *testing.T) {
	drop := point(models.FeatureBassDrop, 40, 3.0)
	fa := models.FeatureSet{BassDrop: &drop, VocalPeaks: []models.FeaturePoint{point(models.FeatureVocalPeak, 5, 0.2)}}
	fb := models.FeatureSet{VocalPeaks: []models.FeaturePoint{point(models.FeatureVocalPeak, 9, 0.2)}}
	rep := models.CompatibilityReport{Score: 70}

	a := Plan(fa, fb, rep, 120)
	b := Plan(fa, fb, rep, 120)
	if !reflect.DeepEqual(a, b) {
		t.Error("Plan is not deterministic for identical inputs")
	}
}
