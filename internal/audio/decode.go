package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/go-audio/wav"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

// ErrUnsupportedFormat is returned when a file extension maps to no
// registered decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// DecodeFile decodes a WAV, MP3 or Ogg Vorbis file into a planar
// float32 buffer. The format is chosen by file extension. Decoding is
// all-or-nothing: a malformed file yields a single terminal error,
// never a partial buffer.
func DecodeFile(path string) (*models.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return DecodeWAV(f)
	case ".mp3":
		return DecodeMP3(f)
	case ".ogg", ".oga":
		return DecodeOgg(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// DecodeWAV decodes PCM WAV data from r.
func DecodeWAV(r io.ReadSeeker) (*models.Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid WAV file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV samples: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels == 0 {
		return nil, errors.New("WAV file has no channel information")
	}

	bitDepth := int(dec.BitDepth)
	if pcm.SourceBitDepth != 0 {
		bitDepth = pcm.SourceBitDepth
	}
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))
	// 8-bit WAV stores unsigned samples; recenter before scaling.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	numCh := pcm.Format.NumChannels
	frames := len(pcm.Data) / numCh
	channels := make([][]float32, numCh)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < numCh; c++ {
			channels[c][i] = float32(pcm.Data[i*numCh+c]-offset) / scale
		}
	}
	return models.NewBuffer(pcm.Format.SampleRate, channels), nil
}

// DecodeMP3 decodes MPEG-1 Layer III data from r. go-mp3 always emits
// 16-bit little-endian stereo.
func DecodeMP3(r io.Reader) (*models.Buffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening MP3 stream: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading MP3 samples: %w", err)
	}

	frames := len(raw) / 4 // 2 channels x 2 bytes
	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := 0; i < frames; i++ {
		l := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		rr := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		left[i] = float32(l) / 32768.0
		right[i] = float32(rr) / 32768.0
	}
	return models.NewBuffer(dec.SampleRate(), [][]float32{left, right}), nil
}

// DecodeOgg decodes Ogg Vorbis data from r.
func DecodeOgg(r io.Reader) (*models.Buffer, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading Ogg Vorbis stream: %w", err)
	}
	if format.Channels == 0 {
		return nil, errors.New("Ogg stream has no channels")
	}

	numCh := format.Channels
	frames := len(data) / numCh
	channels := make([][]float32, numCh)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < numCh; c++ {
			channels[c][i] = data[i*numCh+c]
		}
	}
	return models.NewBuffer(format.SampleRate, channels), nil
}
