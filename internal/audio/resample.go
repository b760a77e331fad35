package audio

import "github.com/ishatailor/AI-DJ/pkg/models"

// Slice copies the [start, start+duration) window of src into a new
// buffer. Bounds are clamped to the source; the source is not touched.
func Slice(src *models.Buffer, start, duration float64) *models.Buffer {
	sr := src.SampleRate()
	first := int(start * float64(sr))
	if first < 0 {
		first = 0
	}
	last := first + int(duration*float64(sr))
	if last > src.NumFrames() {
		last = src.NumFrames()
	}
	if first > last {
		first = last
	}

	channels := make([][]float32, src.NumChannels())
	for c := range channels {
		out := make([]float32, last-first)
		copy(out, src.Channel(c)[first:last])
		channels[c] = out
	}
	return models.NewBuffer(sr, channels)
}

// Rate resamples src by the given playback rate: rate 2.0 plays twice
// as fast (half the frames), rate 0.5 half as fast. Catmull-Rom
// interpolation; pitch shifts with rate, which is the intended crude
// tempo-matching behavior.
func Rate(src *models.Buffer, rate float64) *models.Buffer {
	if rate <= 0 || rate == 1.0 {
		return src
	}
	inFrames := src.NumFrames()
	if inFrames == 0 {
		return src
	}
	outFrames := int(float64(inFrames) / rate)
	if outFrames < 1 {
		outFrames = 1
	}

	channels := make([][]float32, src.NumChannels())
	for c := range channels {
		in := src.Channel(c)
		out := make([]float32, outFrames)
		for i := 0; i < outFrames; i++ {
			pos := float64(i) * rate
			idx := int(pos)
			frac := float32(pos - float64(idx))
			out[i] = cubicInterpolate(
				sampleAt(in, idx-1),
				sampleAt(in, idx),
				sampleAt(in, idx+1),
				sampleAt(in, idx+2),
				frac,
			)
		}
		channels[c] = out
	}
	return models.NewBuffer(src.SampleRate(), channels)
}

func sampleAt(s []float32, i int) float32 {
	if i < 0 {
		i = 0
	}
	if i >= len(s) {
		i = len(s) - 1
	}
	return s[i]
}

// cubicInterpolate evaluates a Catmull-Rom spline through four
// consecutive samples at fractional position x in [0, 1].
func cubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1
	return a0*x*x*x + a1*x*x + a2*x + a3
}
