package render

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ishatailor/AI-DJ/internal/audio"
	"github.com/ishatailor/AI-DJ/pkg/models"
)

var (
	// ErrMissingBuffer is returned when a track has no decoded audio.
	ErrMissingBuffer = errors.New("render: track buffer is missing")
	// ErrEmptyTimeline is returned for a timeline with no sections or
	// a non-positive duration.
	ErrEmptyTimeline = errors.New("render: timeline is empty")
)

// rateMatchThresholdSec is the section length difference above which
// the incoming track is resampled to match the lead section.
const rateMatchThresholdSec = 0.1

const outputChannels = 2

// Input carries everything Render needs: the planned timeline, the two
// full decoded tracks, and the section windows chosen from each.
type Input struct {
	Timeline   models.Timeline
	Track1     *models.Buffer
	Track2     *models.Buffer
	Selection1 models.SectionSelection
	Selection2 models.SectionSelection

	// Track2Tempo sizes the incoming track's entry delay. Zero means
	// unknown and falls back to 120 BPM.
	Track2Tempo float64

	// SampleRate of the output. Zero takes the lead track's rate.
	SampleRate int
}

// Render realizes a planned mix into a stereo buffer of exactly
// round(Timeline.Duration * SampleRate) frames. It is a pure function
// of its input: rendering the same Input twice yields identical audio.
func Render(ctx context.Context, in Input) (*models.Buffer, error) {
	if in.Track1 == nil || in.Track2 == nil {
		return nil, ErrMissingBuffer
	}
	tl := in.Timeline
	if tl.Duration <= 0 || len(tl.Sections) == 0 {
		return nil, ErrEmptyTimeline
	}
	sampleRate := in.SampleRate
	if sampleRate == 0 {
		sampleRate = in.Track1.SampleRate()
	}

	sub1 := audio.Slice(in.Track1, in.Selection1.StartTime, in.Selection1.Duration)
	sub2 := audio.Slice(in.Track2, in.Selection2.StartTime, in.Selection2.Duration)

	// Crude tempo matching: nudge the incoming section's playback
	// rate by the duration ratio. Pitch shifts with rate.
	d1, d2 := sub1.Duration(), sub2.Duration()
	if d2 > 0 && math.Abs(d1-d2) > rateMatchThresholdSec {
		sub2 = audio.Rate(sub2, d1/d2)
	}

	totalFrames := int(math.Round(tl.Duration * float64(sampleRate)))
	out := make([][]float32, outputChannels)
	for ch := range out {
		out[ch] = make([]float32, totalFrames)
	}

	leadAuto, incomingAuto := buildAutomation(tl, in.Track2Tempo)
	lead := newChain(models.RoleLead, sampleRate, outputChannels, leadAuto)
	incoming := newChain(models.RoleIncoming, sampleRate, outputChannels, incomingAuto)

	if err := renderTrack(ctx, out, sub1, lead, 0, sampleRate); err != nil {
		return nil, fmt.Errorf("render lead track: %w", err)
	}
	t2Frame := int(math.Round(tl.Track2Start * float64(sampleRate)))
	if err := renderTrack(ctx, out, sub2, incoming, t2Frame, sampleRate); err != nil {
		return nil, fmt.Errorf("render incoming track: %w", err)
	}

	for ch := range out {
		clamp(out[ch])
	}
	return models.NewBuffer(sampleRate, out), nil
}

// renderTrack processes one source through its chain and adds it into
// the output starting at startFrame. The chain runs over the track's
// whole placement window, including silence past the source's end, so
// compressor and filter state stay continuous.
func renderTrack(ctx context.Context, out [][]float32, src *models.Buffer, c *chain, startFrame, sampleRate int) error {
	totalFrames := len(out[0])
	if startFrame >= totalFrames {
		return nil
	}
	srcFrames := src.NumFrames()
	invRate := 1 / float64(sampleRate)

	for block := startFrame; block < totalFrames; block += blockFrames {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := float64(block) * invRate
		c.updateCoefficients(t)

		end := block + blockFrames
		if end > totalFrames {
			end = totalFrames
		}
		for frame := block; frame < end; frame++ {
			srcFrame := frame - startFrame
			t := float64(frame) * invRate
			for ch := 0; ch < len(out); ch++ {
				var x float64
				if srcFrame < srcFrames {
					x = float64(sourceSample(src, ch, srcFrame))
				}
				out[ch][frame] += float32(c.processSample(ch, x, t))
			}
		}
	}
	return nil
}

// sourceSample reads channel ch of a source, duplicating mono sources
// across both output channels.
func sourceSample(src *models.Buffer, ch, frame int) float32 {
	if ch >= src.NumChannels() {
		ch = 0
	}
	return src.Channel(ch)[frame]
}

func clamp(samples []float32) {
	for i, s := range samples {
		if s > 1 {
			samples[i] = 1
		} else if s < -1 {
			samples[i] = -1
		}
	}
}
