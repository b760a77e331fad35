package models

// Buffer holds decoded multi-channel PCM at a fixed sample rate.
// Samples are planar float32 in [-1, 1]. A Buffer is treated as
// immutable once constructed: downstream consumers read channel data
// but never write it.
type Buffer struct {
	sampleRate int
	channels   [][]float32
}

// NewBuffer wraps planar channel data into a Buffer. All channels must
// have the same length; the shortest channel wins if they differ.
func NewBuffer(sampleRate int, channels [][]float32) *Buffer {
	if len(channels) > 1 {
		frames := len(channels[0])
		for _, ch := range channels[1:] {
			if len(ch) < frames {
				frames = len(ch)
			}
		}
		for i := range channels {
			channels[i] = channels[i][:frames]
		}
	}
	return &Buffer{sampleRate: sampleRate, channels: channels}
}

func (b *Buffer) SampleRate() int  { return b.sampleRate }
func (b *Buffer) NumChannels() int { return len(b.channels) }

// NumFrames returns the per-channel sample count.
func (b *Buffer) NumFrames() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Duration in seconds.
func (b *Buffer) Duration() float64 {
	if b.sampleRate == 0 {
		return 0
	}
	return float64(b.NumFrames()) / float64(b.sampleRate)
}

// Channel returns the sample data for channel i. The returned slice is
// shared with the buffer and must not be modified.
func (b *Buffer) Channel(i int) []float32 {
	if i < 0 || i >= len(b.channels) {
		return nil
	}
	return b.channels[i]
}

// Left returns channel 0, the channel all feature detectors analyze.
func (b *Buffer) Left() []float32 { return b.Channel(0) }
