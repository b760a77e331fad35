// Package selection picks which slice of each source track feeds the
// renderer. The lead track always opens the mix from its own start; the
// incoming track skips its intro and competes candidate windows on a
// crude position-based intensity heuristic.
package selection

import (
	"fmt"
	"math"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

const (
	// fraction of the incoming track skipped so the mix does not open
	// on two intros, and the absolute cap on that skip
	introSkipFraction = 0.2
	introSkipCapSec   = 10.0

	dropLikeIntensity = 0.7
	dropWindowBonus   = 0.25
	minWindowScore    = 0.3
)

// Select chooses the sub-interval of track used for the given role.
// The result always satisfies StartTime >= 0 and
// StartTime+Duration <= track.Duration.
func Select(track models.TrackMetadata, role models.TrackRole, targetDuration float64, rep models.CompatibilityReport) models.SectionSelection {
	if track.Duration <= targetDuration {
		return models.SectionSelection{
			Role:      role,
			StartTime: 0,
			Duration:  track.Duration,
			Reason:    "track shorter than mix window, using whole track",
		}
	}

	if role == models.RoleLead {
		// The mix opens on this track's own intro/build-up/drop arc.
		return models.SectionSelection{
			Role:      role,
			StartTime: 0,
			Duration:  targetDuration,
			Reason:    "lead track anchored at its own opening",
		}
	}

	skip := math.Min(track.Duration*introSkipFraction, introSkipCapSec)
	step := targetDuration / 4

	bestOffset := -1.0
	bestScore := 0.0
	for offset := skip; offset+targetDuration <= track.Duration; offset += step {
		s := windowScore(track.Duration, offset, targetDuration, rep)
		if s > bestScore {
			bestScore = s
			bestOffset = offset
		}
	}

	if bestOffset < 0 || bestScore <= minWindowScore {
		offset := math.Min(skip, track.Duration-targetDuration)
		return models.SectionSelection{
			Role:      role,
			StartTime: offset,
			Duration:  targetDuration,
			Reason:    "no window scored above the bar, starting after skipped intro",
		}
	}

	return models.SectionSelection{
		Role:      role,
		StartTime: bestOffset,
		Duration:  targetDuration,
		Reason:    fmt.Sprintf("window at %.1fs scored %.2f", bestOffset, bestScore),
	}
}

// windowScore rates a candidate window by where its center falls.
// Intensity is a position proxy: the middle third of a track is treated
// as its most intense region. A window whose intensity matches the
// pair's energy balance scores high; windows centered in drop-like
// territory get a flat bonus.
func windowScore(trackDuration, offset, windowDuration float64, rep models.CompatibilityReport) float64 {
	center := offset + windowDuration/2
	intensity := positionIntensity(center / trackDuration)

	// 1.0 when the two tracks' energies match, 0.0 when maximally apart.
	balance := 1 - math.Min(rep.EnergyBalance, 1)

	score := 1 - math.Abs(intensity-balance)
	if intensity >= dropLikeIntensity {
		score += dropWindowBonus
	}
	return score
}

func positionIntensity(relPos float64) float64 {
	const edge = 1.0 / 3
	switch {
	case relPos < 0:
		relPos = 0
	case relPos > 1:
		relPos = 1
	}
	if relPos >= edge && relPos <= 1-edge {
		return 0.9
	}
	// taper toward 0.3 at either end
	d := relPos
	if relPos > 1-edge {
		d = 1 - relPos
	}
	return 0.3 + 0.6*(d/edge)
}
