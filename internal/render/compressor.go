package render

import "math"

// Dynamics defaults shared by both track chains.
const (
	compThresholdDB = -24.0
	compKneeDB      = 30.0
	compRatio       = 12.0
	compAttackSec   = 0.003
	compReleaseSec  = 0.250
)

// compressor is a feed-forward peak compressor with soft knee and
// separate attack and release smoothing on the gain reduction.
type compressor struct {
	thresholdDB float64
	kneeDB      float64
	ratio       float64

	attackCoef  float64
	releaseCoef float64
	envDB       float64
}

func newCompressor(sampleRate float64) *compressor {
	return &compressor{
		thresholdDB: compThresholdDB,
		kneeDB:      compKneeDB,
		ratio:       compRatio,
		attackCoef:  math.Exp(-1 / (compAttackSec * sampleRate)),
		releaseCoef: math.Exp(-1 / (compReleaseSec * sampleRate)),
	}
}

// gainReductionDB computes the static curve for an input level in dB.
func (c *compressor) gainReductionDB(levelDB float64) float64 {
	over := levelDB - c.thresholdDB
	half := c.kneeDB / 2
	switch {
	case over <= -half:
		return 0
	case over >= half:
		return over * (1/c.ratio - 1)
	default:
		// quadratic interpolation inside the knee
		t := over + half
		return t * t / (2 * c.kneeDB) * (1/c.ratio - 1)
	}
}

func (c *compressor) process(x float64) float64 {
	level := math.Abs(x)
	levelDB := -96.0
	if level > 1e-5 {
		levelDB = 20 * math.Log10(level)
	}
	target := c.gainReductionDB(levelDB)
	coef := c.releaseCoef
	if target < c.envDB {
		coef = c.attackCoef
	}
	c.envDB = target + coef*(c.envDB-target)
	return x * math.Pow(10, c.envDB/20)
}
