// Package analysis scores how mixable two tracks are from their coarse
// metadata. Analyze is pure: same inputs, same report, no side effects.
package analysis

import (
	"math"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

// referenceScale is the 7-letter natural scale used for key distance.
// Sharps deliberately fall through to "unknown": the historical
// 12-semitone circle-of-fifths variant is not in use.
var referenceScale = []string{"C", "D", "E", "F", "G", "A", "B"}

// Analyze builds a compatibility report for a track pair.
func Analyze(a, b models.TrackMetadata) models.CompatibilityReport {
	rep := models.CompatibilityReport{
		BPMDifference: math.Abs(a.Tempo - b.Tempo),
		Key:           KeyCompatibility(a.Key, b.Key),
		EnergyBalance: math.Abs(a.Energy - b.Energy),
		DurationRatio: durationRatio(a.Duration, b.Duration),
	}
	rep.Score = score(rep)
	rep.Recommendations = recommendations(rep, math.Abs(a.Danceability-b.Danceability))
	return rep
}

// KeyCompatibility classifies two keys by their distance on the
// reference scale. Symmetric in its arguments.
func KeyCompatibility(key1, key2 string) models.KeyCompatibility {
	i1 := scaleIndex(key1)
	i2 := scaleIndex(key2)
	if i1 < 0 || i2 < 0 {
		return models.KeyUnknown
	}
	d := i1 - i2
	if d < 0 {
		d = -d
	}
	size := len(referenceScale)
	switch {
	case d == 0:
		return models.KeyPerfect
	case d == 1 || d == size-1:
		return models.KeyGood
	case d == 2 || d == size-2:
		return models.KeyModerate
	default:
		return models.KeyChallenging
	}
}

func scaleIndex(key string) int {
	for i, k := range referenceScale {
		if k == key {
			return i
		}
	}
	return -1
}

func durationRatio(d1, d2 float64) float64 {
	lo, hi := d1, d2
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi <= 0 {
		return 0
	}
	return lo / hi
}

func score(rep models.CompatibilityReport) int {
	s := 100

	switch {
	case rep.BPMDifference > 20:
		s -= 30
	case rep.BPMDifference > 10:
		s -= 15
	}

	switch rep.Key {
	case models.KeyChallenging:
		s -= 25
	case models.KeyModerate:
		s -= 15
	case models.KeyGood:
		s -= 5
	}

	switch {
	case rep.EnergyBalance > 0.6:
		s -= 20
	case rep.EnergyBalance > 0.4:
		s -= 10
	}

	if s < 0 {
		s = 0
	}
	return s
}

// recommendations are advisory strings for the caller's UI; rendering
// never consults them.
func recommendations(rep models.CompatibilityReport, danceabilityDiff float64) []string {
	var recs []string
	if rep.BPMDifference > 20 {
		recs = append(recs, "Consider using a BPM transition technique")
	}
	if rep.Key == models.KeyChallenging {
		recs = append(recs, "Keys may clash - consider pitch shifting")
	}
	if rep.EnergyBalance > 0.4 {
		recs = append(recs, "Energy levels differ significantly")
	}
	if danceabilityDiff > 0.3 {
		recs = append(recs, "Danceability varies between tracks")
	}
	return recs
}
