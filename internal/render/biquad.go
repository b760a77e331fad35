package render

import "math"

// biquad is a direct form I second order IIR section. Coefficients
// follow the Audio EQ Cookbook formulae.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (f *biquad) setHighpass(sampleRate, freq, q float64) {
	w0 := 2 * math.Pi * freq / sampleRate
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	f.b0 = (1 + cosw) / 2 / a0
	f.b1 = -(1 + cosw) / a0
	f.b2 = (1 + cosw) / 2 / a0
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha) / a0
}

func (f *biquad) setPeaking(sampleRate, freq, q, gainDB float64) {
	w0 := 2 * math.Pi * freq / sampleRate
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a := math.Pow(10, gainDB/40)

	a0 := 1 + alpha/a
	f.b0 = (1 + alpha*a) / a0
	f.b1 = -2 * cosw / a0
	f.b2 = (1 - alpha*a) / a0
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha/a) / a0
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}
