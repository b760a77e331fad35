// Package timeline turns feature points and a compatibility report into
// the mix's section chain. Plan is pure and deterministic; when no
// usable features exist it collapses to the compatibility-score
// fallback rather than failing.
package timeline

import (
	"math"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

const (
	// layering buffer between track 2's entry and the blend proper
	preBlendGapSec = 2.0

	crossfadeFraction = 0.4
	crossfadeCapSec   = 10.0
	minOutroSec       = 2.0

	vocalOverlayOffsetFrac = 0.3  // into the crossfade window
	vocalOverlayCapSec     = 6.0  // absolute cap
	vocalOverlayMixFrac    = 0.25 // cap as a fraction of the mix

	buildUpCapSec   = 4.0
	breakdownCapSec = 4.0

	// compatibility-score fallback brackets for track2Start
	highCompatScore    = 70
	mediumCompatScore  = 40
	highCompatStart    = 0.3
	mediumCompatStart  = 0.4
	lowCompatStart     = 0.6
	maxTrack2StartFrac = 0.6

	timeEps = 1e-9
)

// Plan lays out the mix timeline for a pair of analyzed tracks.
func Plan(featA, featB models.FeatureSet, rep models.CompatibilityReport, totalDuration float64) models.Timeline {
	t2 := anchorTrack2Start(featA, featB, rep, totalDuration)

	cfStart := math.Min(t2+preBlendGapSec, totalDuration)
	cfDur := math.Min(totalDuration*crossfadeFraction, crossfadeCapSec)
	if cfStart+cfDur > totalDuration-minOutroSec {
		cfDur = totalDuration - minOutroSec - cfStart
	}
	if cfDur < 0 {
		cfDur = 0
	}
	cfEnd := cfStart + cfDur

	tl := models.Timeline{
		Duration:          totalDuration,
		Track2Start:       t2,
		CrossfadeStart:    cfStart,
		CrossfadeDuration: cfDur,
	}

	// Vocal overlay sits inside the crossfade window, and only when
	// both tracks show vocal-band peaks to swap between.
	voStart, voEnd := 0.0, 0.0
	if len(featA.VocalPeaks) > 0 && len(featB.VocalPeaks) > 0 && cfDur > 0 {
		voStart = cfStart + cfDur*vocalOverlayOffsetFrac
		voDur := math.Min(vocalOverlayCapSec, totalDuration*vocalOverlayMixFrac)
		voEnd = math.Min(voStart+voDur, cfEnd)
		if voEnd-voStart > timeEps {
			tl.VocalOverlayStart = voStart
			tl.VocalOverlayDuration = voEnd - voStart
		} else {
			voStart, voEnd = 0, 0
		}
	}

	// Explicit build-up ahead of the transition when track 1 showed
	// rising-energy windows.
	buildStart := t2
	if len(featA.BuildUps) > 0 {
		buildStart = t2 - math.Min(buildUpCapSec, t2)
	}

	// Post-crossfade breakdown dip when the incoming track carries
	// low-energy regions of its own.
	bdEnd := cfEnd
	if len(featB.Breakdowns) > 0 {
		bdEnd = cfEnd + math.Min(breakdownCapSec, (totalDuration-cfEnd)/2)
	}

	add := func(name string, start, end float64, track models.SectionTrack, typ models.SectionType) {
		if end-start <= timeEps {
			return
		}
		tl.Sections = append(tl.Sections, models.Section{
			Name: name, Start: start, End: end, Track: track, Type: typ,
		})
	}

	add("intro", 0, buildStart, models.SectionTrack1, models.SectionSolo)
	add("build-up", buildStart, t2, models.SectionTrack1, models.SectionBuildUp)
	add("transition", t2, cfStart, models.SectionBoth, models.SectionDrop)
	if voEnd > voStart {
		add("crossfade", cfStart, voStart, models.SectionBoth, models.SectionCrossfade)
		add("vocal-overlay", voStart, voEnd, models.SectionBoth, models.SectionVocalOverlay)
		add("final-drop", voEnd, cfEnd, models.SectionBoth, models.SectionFinalDrop)
	} else {
		add("crossfade", cfStart, cfEnd, models.SectionBoth, models.SectionCrossfade)
	}
	add("breakdown", cfEnd, bdEnd, models.SectionTrack2, models.SectionBreakdown)
	add("outro", bdEnd, totalDuration, models.SectionTrack2, models.SectionSolo)

	return tl
}

// anchorTrack2Start picks where the incoming track enters. Matched bass
// drops are the strongest cue, a build-up meeting a drop point the next
// best; with neither, the overall compatibility score chooses a
// conservative fraction of the mix (lower compatibility enters later
// with a shorter blend to avoid prolonged clashing).
func anchorTrack2Start(featA, featB models.FeatureSet, rep models.CompatibilityReport, totalDuration float64) float64 {
	var t2 float64
	switch {
	case featA.BassDrop != nil && featB.BassDrop != nil:
		t2 = math.Max(0, featA.BassDrop.Time-featB.BassDrop.Time)
	case len(featA.BuildUps) > 0 && len(featB.DropPoints) > 0:
		t2 = math.Max(0, featA.BuildUps[0].Time-featB.DropPoints[0].Time)
	case rep.Score > highCompatScore:
		t2 = totalDuration * highCompatStart
	case rep.Score > mediumCompatScore:
		t2 = totalDuration * mediumCompatStart
	default:
		t2 = totalDuration * lowCompatStart
	}
	return math.Min(t2, totalDuration*maxTrack2StartFrac)
}
