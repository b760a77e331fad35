// Package features scans decoded PCM for the lightweight detection
// events the timeline planner anchors on: bass drops, vocal-energy
// peaks, energy valleys, build-ups, drop points and breakdown regions.
// The detectors are energy-in-band threshold heuristics over sliding
// windows, not beat tracking. Absence of a signal is an empty result,
// never an error.
package features

import (
	"math"
	"sort"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

// Only the first 60% of the usable region is scanned; later material is
// reached through offset selection rather than exhaustive analysis.
const scanFraction = 0.6

const (
	bassDropWindow = 0.5
	bassDropHop    = 0.1
	bassDropRatio  = 2.0
	bassCutoffHz   = 200.0

	vocalWindow    = 0.3
	vocalHop       = 0.05
	vocalThreshold = 0.01
	vocalLowHz     = 300.0
	vocalHighHz    = 3000.0

	valleyWindow    = 0.5
	valleyHop       = 0.1
	valleyThreshold = 0.005

	buildUpWindow  = 1.0
	buildUpHop     = 0.2
	buildUpMinRate = 0.1

	dropWindow = 0.5
	dropHop    = 0.1
	dropRatio  = 1.5

	breakdownWindow    = 2.0
	breakdownHop       = 0.5
	breakdownThreshold = 0.003
	breakdownQuietFrac = 0.6

	topN = 3
)

// Extract runs every detector over the left channel of buf. The scan
// interval is [0, min(trackDuration, mixDuration*0.6)).
func Extract(buf *models.Buffer, mixDuration float64) models.FeatureSet {
	samples := buf.Left()
	sr := buf.SampleRate()
	end := math.Min(buf.Duration(), mixDuration*scanFraction)

	return models.FeatureSet{
		BassDrop:      DetectBassDrop(samples, sr, 0, end),
		VocalPeaks:    DetectVocalPeaks(samples, sr, 0, end),
		EnergyValleys: DetectEnergyValleys(samples, sr, 0, end),
		BuildUps:      DetectBuildUps(samples, sr, 0, end),
		DropPoints:    DetectDropPoints(samples, sr, 0, end),
		Breakdowns:    DetectBreakdowns(samples, sr, 0, end),
	}
}

// DetectBassDrop finds the strongest sudden loss of sub-200Hz energy
// between consecutive 0.5s windows. Returns nil when no window pair
// exceeds the 2.0 ratio.
func DetectBassDrop(samples []float32, sr int, start, end float64) *models.FeaturePoint {
	var best *models.FeaturePoint
	prev := -1.0
	eachWindow(samples, sr, start, end, bassDropWindow, bassDropHop, func(t float64, win []float32) {
		cur := bassEnergy(win, sr)
		if prev >= 0 && cur > 0 {
			if ratio := prev / cur; ratio > bassDropRatio {
				if best == nil || ratio > best.Intensity {
					best = &models.FeaturePoint{Time: t, Intensity: ratio, Kind: models.FeatureBassDrop}
				}
			}
		}
		prev = cur
	})
	return best
}

// DetectVocalPeaks finds 0.3s windows whose 300-3000Hz band energy
// exceeds a fixed threshold; the top 3 by energy are returned.
func DetectVocalPeaks(samples []float32, sr int, start, end float64) []models.FeaturePoint {
	var hits []models.FeaturePoint
	eachWindow(samples, sr, start, end, vocalWindow, vocalHop, func(t float64, win []float32) {
		e := bandEnergy(win, sr, vocalLowHz, vocalHighHz)
		if e > vocalThreshold {
			hits = append(hits, models.FeaturePoint{Time: t, Intensity: e, Kind: models.FeatureVocalPeak})
		}
	})
	return topByIntensity(hits, topN)
}

// DetectEnergyValleys returns the 3 quietest full-band windows below
// the low-energy threshold.
func DetectEnergyValleys(samples []float32, sr int, start, end float64) []models.FeaturePoint {
	var hits []models.FeaturePoint
	eachWindow(samples, sr, start, end, valleyWindow, valleyHop, func(t float64, win []float32) {
		e := meanSquare(win)
		if e < valleyThreshold {
			hits = append(hits, models.FeaturePoint{Time: t, Intensity: e, Kind: models.FeatureEnergyValley})
		}
	})
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Intensity < hits[j].Intensity })
	if len(hits) > topN {
		hits = hits[:topN]
	}
	return hits
}

// DetectBuildUps splits each 1s window into 4 segments and reports
// windows whose segment energies rise monotonically with a normalized
// total increase above 0.1; top 3 by rate.
func DetectBuildUps(samples []float32, sr int, start, end float64) []models.FeaturePoint {
	var hits []models.FeaturePoint
	eachWindow(samples, sr, start, end, buildUpWindow, buildUpHop, func(t float64, win []float32) {
		segs := segmentEnergies(win, 4)
		increasing := true
		rise := 0.0
		for i := 1; i < len(segs); i++ {
			d := segs[i] - segs[i-1]
			if d < 0 {
				increasing = false
				break
			}
			rise += d
		}
		if !increasing || segs[0] <= 0 {
			return
		}
		if rate := rise / segs[0]; rate > buildUpMinRate {
			hits = append(hits, models.FeaturePoint{Time: t, Intensity: rate, Kind: models.FeatureBuildUp})
		}
	})
	return topByIntensity(hits, topN)
}

// DetectDropPoints reports windows whose total energy fell by more than
// a 1.5 ratio from the prior window; top 3 by ratio.
func DetectDropPoints(samples []float32, sr int, start, end float64) []models.FeaturePoint {
	var hits []models.FeaturePoint
	prev := -1.0
	eachWindow(samples, sr, start, end, dropWindow, dropHop, func(t float64, win []float32) {
		cur := meanSquare(win)
		if prev >= 0 && cur > 0 {
			if ratio := prev / cur; ratio > dropRatio {
				hits = append(hits, models.FeaturePoint{Time: t, Intensity: ratio, Kind: models.FeatureDropPoint})
			}
		}
		prev = cur
	})
	return topByIntensity(hits, topN)
}

// DetectBreakdowns classifies a 2s window as a breakdown when at least
// 60% of its 8 segments sit below the low-energy threshold. The first
// 3 windows in scan order are retained (all windows share the same
// duration, so "longest" degenerates to retained order).
func DetectBreakdowns(samples []float32, sr int, start, end float64) []models.FeaturePoint {
	var hits []models.FeaturePoint
	eachWindow(samples, sr, start, end, breakdownWindow, breakdownHop, func(t float64, win []float32) {
		if len(hits) >= topN {
			return
		}
		segs := segmentEnergies(win, 8)
		quiet := 0
		for _, e := range segs {
			if e < breakdownThreshold {
				quiet++
			}
		}
		frac := float64(quiet) / float64(len(segs))
		if frac >= breakdownQuietFrac {
			hits = append(hits, models.FeaturePoint{Time: t, Intensity: frac, Kind: models.FeatureBreakdown})
		}
	})
	return hits
}

// eachWindow slides a window of winSec seconds over [start, end) in
// hops of hopSec, invoking fn with the window's start time and slice.
// An interval shorter than one window yields no calls.
func eachWindow(samples []float32, sr int, start, end float64, winSec, hopSec float64, fn func(t float64, win []float32)) {
	if sr <= 0 || len(samples) == 0 {
		return
	}
	if limit := float64(len(samples)) / float64(sr); end > limit {
		end = limit
	}
	winFrames := int(winSec * float64(sr))
	if winFrames <= 0 || end-start < winSec {
		return
	}
	for t := start; t+winSec <= end; t += hopSec {
		first := int(t * float64(sr))
		last := first + winFrames
		if last > len(samples) {
			break
		}
		fn(t, samples[first:last])
	}
}

func meanSquare(win []float32) float64 {
	if len(win) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range win {
		v := float64(s)
		sum += v * v
	}
	return sum / float64(len(win))
}

func segmentEnergies(win []float32, n int) []float64 {
	segs := make([]float64, n)
	segLen := len(win) / n
	if segLen == 0 {
		return segs
	}
	for i := 0; i < n; i++ {
		segs[i] = meanSquare(win[i*segLen : (i+1)*segLen])
	}
	return segs
}

// onePole is a one-pole low-pass filter, alpha = dt/(RC+dt).
type onePole struct {
	alpha float64
	y     float64
}

func newOnePole(cutoffHz float64, sr int) onePole {
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	dt := 1.0 / float64(sr)
	return onePole{alpha: dt / (rc + dt)}
}

func (f *onePole) process(x float64) float64 {
	f.y += f.alpha * (x - f.y)
	return f.y
}

// bassEnergy is the mean squared output of a 200Hz one-pole low-pass
// run over the window. Filter state is reset per window so results do
// not depend on scan position.
func bassEnergy(win []float32, sr int) float64 {
	lp := newOnePole(bassCutoffHz, sr)
	sum := 0.0
	for _, s := range win {
		v := lp.process(float64(s))
		sum += v * v
	}
	if len(win) == 0 {
		return 0
	}
	return sum / float64(len(win))
}

// bandEnergy approximates energy in [lowHz, highHz] as the difference
// of two one-pole low-pass filters at the band edges.
func bandEnergy(win []float32, sr int, lowHz, highHz float64) float64 {
	lpHigh := newOnePole(highHz, sr)
	lpLow := newOnePole(lowHz, sr)
	sum := 0.0
	for _, s := range win {
		x := float64(s)
		v := lpHigh.process(x) - lpLow.process(x)
		sum += v * v
	}
	if len(win) == 0 {
		return 0
	}
	return sum / float64(len(win))
}

func topByIntensity(hits []models.FeaturePoint, n int) []models.FeaturePoint {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Intensity > hits[j].Intensity })
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits
}
