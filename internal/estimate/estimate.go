// Package estimate fills in track metadata when the caller has no
// catalog values: tempo from an onset-flux autocorrelation, key from a
// chroma profile match, energy from overall RMS, and a rough
// danceability from beat regularity. These are stand-ins, not
// authoritative analysis, and the rest of the engine treats whatever
// metadata it receives as ground truth.
package estimate

import (
	"math"
	"math/cmplx"
	"path/filepath"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

const (
	onsetFrameSize = 1024
	onsetHopSize   = 512

	chromaFrameSize = 4096
	chromaHopSize   = 2048
	chromaMinHz     = 65.0
	chromaMaxHz     = 4000.0
	middleCHz       = 261.63

	minBPM     = 60.0
	maxBPM     = 200.0
	defaultBPM = 120.0
)

var pitchClasses = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Krumhansl-Schmuckler major key profile.
var majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}

// Metadata derives a full TrackMetadata from decoded audio. The name
// is taken from the file path with its extension stripped.
func Metadata(path string, buf *models.Buffer) models.TrackMetadata {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	samples := buf.Left()
	sr := buf.SampleRate()

	onset := onsetEnvelope(samples, sr)
	tempo := bpmFromOnsets(onset, sr)
	return models.TrackMetadata{
		Name:         name,
		Duration:     buf.Duration(),
		SampleRate:   sr,
		Tempo:        tempo,
		Key:          Key(samples, sr),
		Energy:       Energy(samples),
		Danceability: danceability(onset, tempo, sr),
	}
}

// BPM estimates tempo in beats per minute, normalized into [60, 200].
func BPM(samples []float32, sampleRate int) float64 {
	return bpmFromOnsets(onsetEnvelope(samples, sampleRate), sampleRate)
}

// onsetEnvelope computes a spectral-flux onset strength signal, one
// value per hop.
func onsetEnvelope(samples []float32, sampleRate int) []float64 {
	numFrames := (len(samples) - onsetFrameSize) / onsetHopSize
	if numFrames <= 0 {
		return nil
	}
	win := window.Hann(onsetFrameSize)
	frame := make([]float64, onsetFrameSize)
	prevMag := make([]float64, onsetFrameSize/2+1)
	onset := make([]float64, numFrames)

	for i := 0; i < numFrames; i++ {
		start := i * onsetHopSize
		for j := 0; j < onsetFrameSize; j++ {
			frame[j] = float64(samples[start+j]) * win[j]
		}
		spec := fft.FFTReal(frame)
		flux := 0.0
		for j := 0; j <= onsetFrameSize/2; j++ {
			mag := cmplx.Abs(spec[j])
			if d := mag - prevMag[j]; d > 0 {
				flux += d
			}
			prevMag[j] = mag
		}
		onset[i] = flux
	}
	return onset
}

// bpmFromOnsets autocorrelates the onset envelope over the 60-200 BPM
// lag range. A gaussian weight centered on 120 BPM discourages octave
// errors.
func bpmFromOnsets(onset []float64, sampleRate int) float64 {
	if len(onset) < 100 {
		return defaultBPM
	}
	minLag := int(float64(sampleRate) * 60 / (maxBPM * onsetHopSize))
	maxLag := int(float64(sampleRate) * 60 / (minBPM * onsetHopSize))
	if maxLag >= len(onset) {
		maxLag = len(onset) - 1
	}
	if minLag < 1 {
		minLag = 1
	}

	bestLag, bestCorr := minLag, -1.0
	for lag := minLag; lag <= maxLag; lag++ {
		corr := 0.0
		count := 0
		for i := 0; i+lag < len(onset); i++ {
			corr += onset[i] * onset[i+lag]
			count++
		}
		if count > 0 {
			corr /= float64(count)
		}
		bpm := 60.0 * float64(sampleRate) / (float64(lag) * onsetHopSize)
		weight := math.Exp(-0.5 * math.Pow((bpm-120)/40, 2))
		if w := corr * (0.8 + 0.2*weight); w > bestCorr {
			bestCorr = w
			bestLag = lag
		}
	}

	bpm := 60.0 * float64(sampleRate) / (float64(bestLag) * onsetHopSize)
	for bpm > maxBPM {
		bpm /= 2
	}
	for bpm < minBPM {
		bpm *= 2
	}
	return math.Round(bpm*10) / 10
}

// Key estimates the dominant pitch class by folding spectral energy
// into a 12-bin chroma vector and correlating against the major key
// profile at each rotation. Returns the empty string when the signal
// is too short or too quiet to say.
func Key(samples []float32, sampleRate int) string {
	numFrames := (len(samples) - chromaFrameSize) / chromaHopSize
	if numFrames <= 0 {
		return ""
	}
	win := window.Hann(chromaFrameSize)
	frame := make([]float64, chromaFrameSize)
	chroma := make([]float64, 12)

	for i := 0; i < numFrames; i++ {
		start := i * chromaHopSize
		for j := 0; j < chromaFrameSize; j++ {
			frame[j] = float64(samples[start+j]) * win[j]
		}
		spec := fft.FFTReal(frame)
		for bin := 1; bin <= chromaFrameSize/2; bin++ {
			freq := float64(bin) * float64(sampleRate) / chromaFrameSize
			if freq < chromaMinHz || freq > chromaMaxHz {
				continue
			}
			semitones := 12 * math.Log2(freq/middleCHz)
			pc := ((int(math.Round(semitones)) % 12) + 12) % 12
			chroma[pc] += cmplx.Abs(spec[bin])
		}
	}

	total := 0.0
	for _, v := range chroma {
		total += v
	}
	if total < 1e-9 {
		return ""
	}

	bestCorr := math.Inf(-1)
	best := ""
	rolled := make([]float64, 12)
	for rot := 0; rot < 12; rot++ {
		for j := 0; j < 12; j++ {
			rolled[j] = chroma[(j+rot)%12]
		}
		if corr := pearson(rolled, majorProfile); corr > bestCorr {
			bestCorr = corr
			best = pitchClasses[rot]
		}
	}
	return best
}

// Energy maps overall RMS level into [0, 1]. Typical mastered program
// material sits around -14 dBFS RMS, which lands near 0.6 here.
func Energy(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	return clamp01(rms * 3)
}

// danceability blends beat-pulse regularity with how close the tempo
// sits to the club sweet spot.
func danceability(onset []float64, tempo float64, sampleRate int) float64 {
	tempoFit := math.Exp(-0.5 * math.Pow((tempo-120)/30, 2))
	return clamp01(0.3 + 0.3*tempoFit + 0.4*pulseStrength(onset, tempo, sampleRate))
}

// pulseStrength measures how strongly the onset envelope repeats at
// the beat period, as autocorrelation at the beat lag over the zero
// lag.
func pulseStrength(onset []float64, tempo float64, sampleRate int) float64 {
	if tempo <= 0 || len(onset) == 0 {
		return 0
	}
	lag := int(60 * float64(sampleRate) / (tempo * onsetHopSize))
	if lag < 1 || lag >= len(onset) {
		return 0
	}
	var atLag, atZero float64
	for i := 0; i+lag < len(onset); i++ {
		atLag += onset[i] * onset[i+lag]
	}
	for _, v := range onset {
		atZero += v * v
	}
	if atZero < 1e-12 {
		return 0
	}
	return clamp01(atLag / atZero)
}

func pearson(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}
	var sumA, sumB, sumAB, sumA2, sumB2 float64
	for i := 0; i < n; i++ {
		sumA += a[i]
		sumB += b[i]
		sumAB += a[i] * b[i]
		sumA2 += a[i] * a[i]
		sumB2 += b[i] * b[i]
	}
	num := float64(n)*sumAB - sumA*sumB
	den := math.Sqrt((float64(n)*sumA2 - sumA*sumA) * (float64(n)*sumB2 - sumB*sumB))
	if den < 1e-12 {
		return 0
	}
	return num / den
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
