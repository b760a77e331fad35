// Package mixdj assembles the mix pipeline behind one Service:
// compatibility analysis, feature extraction, section selection,
// timeline planning, rendering and history persistence.
package mixdj

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ishatailor/AI-DJ/internal/analysis"
	"github.com/ishatailor/AI-DJ/internal/audio"
	"github.com/ishatailor/AI-DJ/internal/estimate"
	"github.com/ishatailor/AI-DJ/internal/features"
	"github.com/ishatailor/AI-DJ/internal/render"
	"github.com/ishatailor/AI-DJ/internal/selection"
	"github.com/ishatailor/AI-DJ/internal/storage"
	"github.com/ishatailor/AI-DJ/internal/timeline"
	"github.com/ishatailor/AI-DJ/pkg/logger"
	"github.com/ishatailor/AI-DJ/pkg/models"
	"github.com/ishatailor/AI-DJ/pkg/wavio"
)

var (
	// ErrMissingAudio is returned when a track has no decoded buffer.
	ErrMissingAudio = errors.New("mixdj: track has no audio buffer")
	// ErrEmptyTrack is returned when a track's buffer holds no frames.
	ErrEmptyTrack = errors.New("mixdj: track buffer is empty")
)

type mixService struct {
	cfg   *Config
	store Store
	log   Logger

	// renderSlots bounds concurrent renders; each render holds one
	// slot for its whole duration.
	renderSlots chan struct{}
}

// NewService builds a Service from options. When no store is supplied
// a sqlite store is opened at Config.DBPath.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.MixDuration <= 0 {
		cfg.MixDuration = 120
	}
	if cfg.MaxConcurrentRenders <= 0 {
		cfg.MaxConcurrentRenders = 2
	}

	store := cfg.Store
	if store == nil {
		s, err := storage.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening mix history: %w", err)
		}
		store = s
	}

	return &mixService{
		cfg:         cfg,
		store:       store,
		log:         cfg.Logger,
		renderSlots: make(chan struct{}, cfg.MaxConcurrentRenders),
	}, nil
}

// MixOption adjusts a single Mix or MixFiles call without touching the
// service's configuration.
type MixOption func(*mixSettings)

type mixSettings struct {
	duration   float64
	sampleRate int
}

// ForDuration overrides the target mix length for one call.
func ForDuration(seconds float64) MixOption {
	return func(ms *mixSettings) {
		ms.duration = seconds
	}
}

// AtSampleRate overrides the output sample rate for one call.
func AtSampleRate(rate int) MixOption {
	return func(ms *mixSettings) {
		ms.sampleRate = rate
	}
}

func (s *mixService) Mix(ctx context.Context, track1, track2 models.Track, opts ...MixOption) (*models.RenderedMix, error) {
	set := mixSettings{duration: s.cfg.MixDuration, sampleRate: s.cfg.SampleRate}
	for _, opt := range opts {
		opt(&set)
	}
	if set.duration <= 0 {
		set.duration = s.cfg.MixDuration
	}

	if err := validateTrack(track1); err != nil {
		return nil, fmt.Errorf("track1: %w", err)
	}
	if err := validateTrack(track2); err != nil {
		return nil, fmt.Errorf("track2: %w", err)
	}

	select {
	case s.renderSlots <- struct{}{}:
		defer func() { <-s.renderSlots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.log.Info("mixing %q with %q", track1.Meta.Name, track2.Meta.Name)
	rep := analysis.Analyze(track1.Meta, track2.Meta)
	s.log.Info("compatibility score %d (key %s, bpm diff %.1f)",
		rep.Score, rep.Key, rep.BPMDifference)

	target := set.duration
	feat1 := features.Extract(track1.Buffer, target)
	feat2 := features.Extract(track2.Buffer, target)

	sel1 := selection.Select(track1.Meta, models.RoleLead, target, rep)
	sel2 := selection.Select(track2.Meta, models.RoleIncoming, target, rep)
	s.log.Debug("selected %s [%.1fs +%.1fs] and %s [%.1fs +%.1fs]",
		sel1.Role, sel1.StartTime, sel1.Duration,
		sel2.Role, sel2.StartTime, sel2.Duration)

	tl := timeline.Plan(feat1, feat2, rep, target)
	s.log.Debug("timeline: track2 at %.1fs, crossfade %.1fs..%.1fs",
		tl.Track2Start, tl.CrossfadeStart, tl.CrossfadeStart+tl.CrossfadeDuration)

	buf, err := render.Render(ctx, render.Input{
		Timeline:    tl,
		Track1:      track1.Buffer,
		Track2:      track2.Buffer,
		Selection1:  sel1,
		Selection2:  sel2,
		Track2Tempo: track2.Meta.Tempo,
		SampleRate:  set.sampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering mix: %w", err)
	}

	return &models.RenderedMix{
		Buffer:        buf,
		Duration:      tl.Duration,
		SampleRate:    buf.SampleRate(),
		TrackNames:    [2]string{track1.Meta.Name, track2.Meta.Name},
		Timeline:      tl,
		Compatibility: rep,
		Features:      [2]models.FeatureSet{feat1, feat2},
		Selections:    [2]models.SectionSelection{sel1, sel2},
	}, nil
}

func (s *mixService) MixFiles(ctx context.Context, path1, path2 string, opts ...MixOption) (*models.RenderedMix, error) {
	t1, err := s.loadTrack(path1)
	if err != nil {
		return nil, err
	}
	t2, err := s.loadTrack(path2)
	if err != nil {
		return nil, err
	}
	return s.Mix(ctx, t1, t2, opts...)
}

func (s *mixService) loadTrack(path string) (models.Track, error) {
	buf, err := audio.DecodeFile(path)
	if err != nil {
		return models.Track{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	meta := estimate.Metadata(path, buf)
	s.log.Info("loaded %q: %.1fs, ~%.0f BPM, key %s",
		meta.Name, meta.Duration, meta.Tempo, orUnknown(meta.Key))
	return models.Track{Meta: meta, Buffer: buf}, nil
}

func (s *mixService) Analyze(a, b models.TrackMetadata) models.CompatibilityReport {
	return analysis.Analyze(a, b)
}

func (s *mixService) Export(mix *models.RenderedMix, path string) (models.MixRecord, error) {
	if mix == nil || mix.Buffer == nil {
		return models.MixRecord{}, ErrMissingAudio
	}
	if err := wavio.WriteFile(path, mix.Buffer); err != nil {
		return models.MixRecord{}, fmt.Errorf("exporting mix: %w", err)
	}

	tlJSON, err := json.Marshal(mix.Timeline)
	if err != nil {
		return models.MixRecord{}, fmt.Errorf("encoding timeline: %w", err)
	}
	rec := models.MixRecord{
		ID:               uuid.NewString(),
		Track1Name:       mix.TrackNames[0],
		Track2Name:       mix.TrackNames[1],
		Score:            mix.Compatibility.Score,
		KeyCompatibility: mix.Compatibility.Key,
		Duration:         mix.Duration,
		OutputPath:       path,
		TimelineJSON:     string(tlJSON),
		CreatedAt:        time.Now(),
	}
	if err := s.store.SaveMix(rec); err != nil {
		return models.MixRecord{}, fmt.Errorf("saving mix record: %w", err)
	}
	s.log.Info("exported mix %s to %s", rec.ID, path)
	return rec, nil
}

func (s *mixService) History(limit int) ([]models.MixRecord, error) {
	return s.store.ListMixes(limit)
}

func (s *mixService) GetMix(id string) (models.MixRecord, error) {
	return s.store.GetMixByID(id)
}

func (s *mixService) DeleteMix(id string) error {
	return s.store.DeleteMix(id)
}

func (s *mixService) Close() error {
	return s.store.Close()
}

func validateTrack(t models.Track) error {
	if t.Buffer == nil {
		return ErrMissingAudio
	}
	if t.Buffer.NumFrames() == 0 {
		return ErrEmptyTrack
	}
	return nil
}

func orUnknown(key string) string {
	if key == "" {
		return "unknown"
	}
	return key
}
