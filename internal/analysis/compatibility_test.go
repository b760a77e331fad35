package analysis

import (
	"testing"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

func meta(tempo float64, key string, energy float64) models.TrackMetadata {
	return models.TrackMetadata{
		Name:     "test",
		Duration: 180,
		Tempo:    tempo,
		Key:      key,
		Energy:   energy,
	}
}

func TestAnalyzeMismatchedPair(t *testing.T) {
	// 46 BPM apart, C vs A (moderate), energy 0.5 apart:
	// 100 - 30 - 15 - 10 = 45.
	rep := Analyze(meta(128, "C", 0.8), meta(174, "A", 0.3))

	if rep.BPMDifference != 46 {
		t.Errorf("BPMDifference = %.1f, want 46", rep.BPMDifference)
	}
	if rep.Key != models.KeyModerate {
		t.Errorf("Key = %s, want moderate", rep.Key)
	}
	if rep.EnergyBalance != 0.5 {
		t.Errorf("EnergyBalance = %.2f, want 0.5", rep.EnergyBalance)
	}
	if rep.Score != 45 {
		t.Errorf("Score = %d, want 45", rep.Score)
	}
}

func TestAnalyzeWellMatchedPair(t *testing.T) {
	rep := Analyze(meta(128, "C", 0.7), meta(130, "C", 0.72))
	if rep.Score < 85 {
		t.Errorf("Score = %d, want at least 85 for a well matched pair", rep.Score)
	}
	if rep.Key != models.KeyPerfect {
		t.Errorf("Key = %s, want perfect", rep.Key)
	}
}

func TestAnalyzeIdenticalPair(t *testing.T) {
	rep := Analyze(meta(128, "G", 0.7), meta(128, "G", 0.7))
	if rep.Score != 100 {
		t.Errorf("Identical tracks scored %d, want 100", rep.Score)
	}
	if rep.Key != models.KeyPerfect {
		t.Errorf("Key = %s, want perfect", rep.Key)
	}
	if len(rep.Recommendations) != 0 {
		t.Errorf("Identical tracks got recommendations: %v", rep.Recommendations)
	}
}

func TestKeyCompatibilityClasses(t *testing.T) {
	cases := []struct {
		k1, k2 string
		want   models.KeyCompatibility
	}{
		{"C", "C", models.KeyPerfect},
		{"C", "D", models.KeyGood},
		{"C", "B", models.KeyGood}, // wraps around the scale
		{"C", "E", models.KeyModerate},
		{"C", "A", models.KeyModerate},
		{"C", "F", models.KeyChallenging},
		{"C", "G", models.KeyChallenging},
		{"C#", "C", models.KeyUnknown}, // sharps are not on the scale
		{"", "C", models.KeyUnknown},
		{"H", "Q", models.KeyUnknown},
	}
	for _, tc := range cases {
		if got := KeyCompatibility(tc.k1, tc.k2); got != tc.want {
			t.Errorf("KeyCompatibility(%q, %q) = %s, want %s", tc.k1, tc.k2, got, tc.want)
		}
	}
}

func TestKeyCompatibilitySymmetric(t *testing.T) {
	keys := []string{"C", "D", "E", "F", "G", "A", "B", "", "C#"}
	for _, k1 := range keys {
		for _, k2 := range keys {
			if KeyCompatibility(k1, k2) != KeyCompatibility(k2, k1) {
				t.Errorf("KeyCompatibility not symmetric for %q, %q", k1, k2)
			}
		}
	}
}

func TestScoreBounds(t *testing.T) {
	tempos := []float64{60, 125, 135, 200}
	keys := []string{"C", "D", "E", "F", ""}
	energies := []float64{0, 0.35, 0.5, 1}

	for _, t1 := range tempos {
		for _, k1 := range keys {
			for _, e1 := range energies {
				rep := Analyze(meta(t1, k1, e1), meta(125, "C", 0.5))
				if rep.Score < 0 || rep.Score > 100 {
					t.Fatalf("Score %d out of [0, 100] for tempo=%.0f key=%q energy=%.2f",
						rep.Score, t1, k1, e1)
				}
			}
		}
	}
}

func TestUnknownKeyCarriesNoPenalty(t *testing.T) {
	known := Analyze(meta(128, "C", 0.5), meta(128, "C", 0.5))
	unknown := Analyze(meta(128, "", 0.5), meta(128, "C", 0.5))
	if unknown.Score != known.Score {
		t.Errorf("Unknown key scored %d, want %d (no penalty)", unknown.Score, known.Score)
	}
	if unknown.Key != models.KeyUnknown {
		t.Errorf("Key = %s, want unknown", unknown.Key)
	}
}

func TestRecommendations(t *testing.T) {
	a := meta(100, "C", 0.9)
	a.Danceability = 0.9
	b := meta(140, "F", 0.1)
	b.Danceability = 0.2

	rep := Analyze(a, b)
	if len(rep.Recommendations) != 4 {
		t.Fatalf("Expected 4 recommendations, got %d: %v", len(rep.Recommendations), rep.Recommendations)
	}
}

func TestDurationRatio(t *testing.T) {
	a := meta(128, "C", 0.5)
	a.Duration = 90
	b := meta(128, "C", 0.5)
	b.Duration = 180

	rep := Analyze(a, b)
	if rep.DurationRatio != 0.5 {
		t.Errorf("DurationRatio = %.2f, want 0.5", rep.DurationRatio)
	}
	if flipped := Analyze(b, a); flipped.DurationRatio != rep.DurationRatio {
		t.Error("DurationRatio not symmetric")
	}
}
