// Package wavio serializes rendered mixes to 16-bit PCM WAV.
package wavio

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

const bitDepth = 16

// Write encodes buf as 16-bit PCM WAV. Samples outside [-1, 1] are
// clipped.
func Write(w io.WriteSeeker, buf *models.Buffer) error {
	channels := buf.NumChannels()
	frames := buf.NumFrames()

	enc := wav.NewEncoder(w, buf.SampleRate(), bitDepth, channels, 1)
	data := make([]int, frames*channels)
	for ch := 0; ch < channels; ch++ {
		src := buf.Channel(ch)
		for i := 0; i < frames; i++ {
			data[i*channels+ch] = pcm16(src[i])
		}
	}
	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: buf.SampleRate()},
		SourceBitDepth: bitDepth,
		Data:           data,
	})
	if err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

// WriteFile encodes buf into a WAV file at path.
func WriteFile(path string, buf *models.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func pcm16(s float32) int {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	if s < 0 {
		return int(s * 32768)
	}
	return int(s * 32767)
}
