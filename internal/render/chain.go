package render

import (
	"math"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

// Role-default EQ: the lead track carries a neutral peaking filter at
// 1 kHz that the crossfade can lean on, the incoming track enters
// through a high-pass that opens up as it takes over.
const (
	leadEQFreq     = 1000.0
	leadEQQ        = 1.0
	incomingHPFreq = 120.0
	incomingHPOpen = 80.0
	incomingHPQ    = 1.0

	midEQFreq = 2500.0
	midEQQ    = 1.0

	vocalLeadBoostDB = 4.0
	vocalDuckDB      = -6.0

	entryGain        = 0.6
	plateauGain      = 0.8
	buildUpPushGain  = 1.05
	buildUpThreshold = -30.0
	breakdownDipGain = 0.85
	breakdownHPFreq  = 160.0

	// coefficient updates happen on block boundaries
	blockFrames = 128
	paramEps    = 1e-3
)

// automation is the full curve set for one track chain.
type automation struct {
	gain          *Curve
	eqGainDB      *Curve // lead: peaking gain at 1 kHz
	hpFreq        *Curve // incoming: high-pass corner
	midGainDB     *Curve // shared peaking at 2.5 kHz
	compThreshold *Curve
}

// chain is the realized processing graph for one track: input gain,
// role EQ, mid peaking filter, compressor. Filter coefficients follow
// the curves at block granularity, gain per sample.
type chain struct {
	role       models.TrackRole
	sampleRate float64
	auto       automation

	gainW, eqW, hpW, midW, thW *walker

	eq, mid    []biquad // one per output channel
	comp       []*compressor
	lastEqVal  float64
	lastHPVal  float64
	lastMidVal float64
}

func newChain(role models.TrackRole, sampleRate int, channels int, auto automation) *chain {
	c := &chain{
		role:       role,
		sampleRate: float64(sampleRate),
		auto:       auto,
		gainW:      auto.gain.walker(),
		eqW:        auto.eqGainDB.walker(),
		hpW:        auto.hpFreq.walker(),
		midW:       auto.midGainDB.walker(),
		thW:        auto.compThreshold.walker(),
		eq:         make([]biquad, channels),
		mid:        make([]biquad, channels),
		comp:       make([]*compressor, channels),
		lastEqVal:  math.Inf(-1),
		lastHPVal:  math.Inf(-1),
		lastMidVal: math.Inf(-1),
	}
	for i := range c.comp {
		c.comp[i] = newCompressor(c.sampleRate)
	}
	return c
}

// updateCoefficients refreshes the filters and compressor from the
// curves at wall time t. Called at block boundaries.
func (c *chain) updateCoefficients(t float64) {
	if c.role == models.RoleLead {
		if g := c.eqW.value(t); math.Abs(g-c.lastEqVal) > paramEps {
			c.lastEqVal = g
			for i := range c.eq {
				c.eq[i].setPeaking(c.sampleRate, leadEQFreq, leadEQQ, g)
			}
		}
	} else {
		if f := c.hpW.value(t); math.Abs(f-c.lastHPVal) > paramEps {
			c.lastHPVal = f
			for i := range c.eq {
				c.eq[i].setHighpass(c.sampleRate, f, incomingHPQ)
			}
		}
	}
	if g := c.midW.value(t); math.Abs(g-c.lastMidVal) > paramEps {
		c.lastMidVal = g
		for i := range c.mid {
			c.mid[i].setPeaking(c.sampleRate, midEQFreq, midEQQ, g)
		}
	}
	th := c.thW.value(t)
	for i := range c.comp {
		c.comp[i].thresholdDB = th
	}
}

// processSample runs one sample of one channel through the chain.
func (c *chain) processSample(ch int, x float64, t float64) float64 {
	x *= c.gainW.value(t)
	x = c.eq[ch].process(x)
	x = c.mid[ch].process(x)
	return c.comp[ch].process(x)
}

// buildAutomation derives both tracks' curve sets from a planned
// timeline. The entry delay keeps the incoming track silent for about
// two beats after its start point before fading in.
func buildAutomation(tl models.Timeline, track2Tempo float64) (lead, incoming automation) {
	t2 := tl.Track2Start
	cfStart := tl.CrossfadeStart
	cfEnd := cfStart + tl.CrossfadeDuration
	cfMid := cfStart + tl.CrossfadeDuration/2

	delay := entryDelay(track2Tempo)
	if t2+delay > cfStart {
		delay = math.Max(0, cfStart-t2)
	}

	var buildStart, buildEnd float64
	var bdStart, bdEnd float64
	hasBuild, hasBreakdown := false, false
	for _, s := range tl.Sections {
		switch s.Type {
		case models.SectionBuildUp:
			buildStart, buildEnd, hasBuild = s.Start, s.End, true
		case models.SectionBreakdown:
			bdStart, bdEnd, hasBreakdown = s.Start, s.End, true
		}
	}

	// Lead track: full level through the intro, eased back as the
	// incoming track lands, gone by the end of the crossfade.
	lead.gain = NewCurve(1.0)
	if hasBuild {
		lead.gain.Set(buildStart, 1.0)
		lead.gain.RampTo(buildEnd, buildUpPushGain)
	}
	lead.gain.RampTo(t2, plateauGain+0.1)
	lead.gain.RampTo(cfStart, plateauGain)
	lead.gain.RampTo(cfEnd, 0)

	lead.eqGainDB = NewCurve(0)
	lead.eqGainDB.Set(cfStart, 0)
	lead.eqGainDB.RampTo(cfMid, 3)
	lead.eqGainDB.RampTo(cfEnd, 0)

	lead.hpFreq = NewCurve(incomingHPFreq)

	lead.midGainDB = NewCurve(0)
	lead.compThreshold = NewCurve(compThresholdDB)
	if hasBuild {
		lead.compThreshold.Set(buildStart, compThresholdDB)
		lead.compThreshold.RampTo(buildEnd, buildUpThreshold)
		lead.compThreshold.RampTo(cfStart, compThresholdDB)
	}

	// Incoming track: silent until its entry, a low shelf of level
	// under the lead, full level once the crossfade completes.
	incoming.gain = NewCurve(0)
	incoming.gain.Set(t2+delay, 0)
	incoming.gain.RampTo(math.Min(t2+delay+1, cfEnd), entryGain)
	incoming.gain.RampTo(cfEnd, 1.0)
	if hasBreakdown {
		bdMid := (bdStart + bdEnd) / 2
		incoming.gain.Set(bdStart, 1.0)
		incoming.gain.RampTo(bdMid, breakdownDipGain)
		incoming.gain.RampTo(bdEnd, 1.0)
	}

	incoming.hpFreq = NewCurve(incomingHPFreq)
	incoming.hpFreq.Set(cfStart, incomingHPFreq)
	incoming.hpFreq.RampTo(cfEnd, incomingHPOpen)
	if hasBreakdown {
		bdMid := (bdStart + bdEnd) / 2
		incoming.hpFreq.Set(bdStart, incomingHPOpen)
		incoming.hpFreq.RampTo(bdMid, breakdownHPFreq)
		incoming.hpFreq.RampTo(bdEnd, incomingHPOpen)
	}

	incoming.eqGainDB = NewCurve(0)
	incoming.midGainDB = NewCurve(0)
	incoming.compThreshold = NewCurve(compThresholdDB)

	// Vocal overlay: push the lead's mids forward, duck the incoming
	// track's to keep the vocal intelligible.
	if tl.HasVocalOverlay() {
		voStart := tl.VocalOverlayStart
		voEnd := voStart + tl.VocalOverlayDuration
		ramp := math.Min(0.2, tl.VocalOverlayDuration/4)

		lead.midGainDB.Set(voStart, 0)
		lead.midGainDB.RampTo(voStart+ramp, vocalLeadBoostDB)
		lead.midGainDB.Set(voEnd-ramp, vocalLeadBoostDB)
		lead.midGainDB.RampTo(voEnd, 0)

		incoming.midGainDB.Set(voStart, 0)
		incoming.midGainDB.RampTo(voStart+ramp, vocalDuckDB)
		incoming.midGainDB.Set(voEnd-ramp, vocalDuckDB)
		incoming.midGainDB.RampTo(voEnd, 0)
	}
	return lead, incoming
}

// entryDelay is roughly two beats of the incoming track, bounded so an
// unknown or extreme tempo cannot stall the fade-in.
func entryDelay(tempo float64) float64 {
	if tempo <= 0 {
		tempo = 120
	}
	d := 2 * 60 / tempo
	return math.Min(2.0, math.Max(0.25, d))
}
