package audio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ishatailor/AI-DJ/pkg/wavio"
)

func TestDecodeFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	_, err := DecodeFile(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeFileMissing(t *testing.T) {
	if _, err := DecodeFile(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, err := DecodeWAV(bytes.NewReader([]byte("RIFFgarbage"))); err == nil {
		t.Error("expected an error for malformed WAV data")
	}
}

func TestDecodeWAV8BitUnsigned(t *testing.T) {
	// 8-bit WAV samples are unsigned, centered on 128.
	path := filepath.Join(t.TempDir(), "tone8.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	enc := wav.NewEncoder(f, testRate, 8, 1, 1)
	err = enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: testRate},
		SourceBitDepth: 8,
		Data:           []int{128, 255, 0, 192, 64},
	})
	if err != nil {
		t.Fatalf("writing 8-bit WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalizing 8-bit WAV: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing fixture: %v", err)
	}

	got, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	want := []float32{0, 127.0 / 128, -1, 0.5, -0.5}
	if got.NumFrames() != len(want) {
		t.Fatalf("NumFrames = %d, want %d", got.NumFrames(), len(want))
	}
	for i, w := range want {
		if g := got.Channel(0)[i]; g != w {
			t.Errorf("frame %d = %v, want %v", i, g, w)
		}
	}
}

func TestDecodeFileWAVRoundTrip(t *testing.T) {
	src := sineBuffer(t, 440, 1, 2)
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := wavio.WriteFile(path, src); err != nil {
		t.Fatalf("writing WAV: %v", err)
	}

	got, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if got.SampleRate() != testRate {
		t.Errorf("SampleRate = %d, want %d", got.SampleRate(), testRate)
	}
	if got.NumChannels() != 2 {
		t.Errorf("NumChannels = %d, want 2", got.NumChannels())
	}
	if got.NumFrames() != src.NumFrames() {
		t.Fatalf("NumFrames = %d, want %d", got.NumFrames(), src.NumFrames())
	}
	// 16-bit quantization bounds the round-trip error.
	const tol = 2.0 / 32768
	for ch := 0; ch < 2; ch++ {
		in, out := src.Channel(ch), got.Channel(ch)
		for i := range in {
			if d := math.Abs(float64(in[i] - out[i])); d > tol+1e-6 {
				t.Fatalf("channel %d frame %d: error %v exceeds 16-bit tolerance", ch, i, d)
			}
		}
	}
}
