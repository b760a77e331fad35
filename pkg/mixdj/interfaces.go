package mixdj

import (
	"context"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

// Service is the public face of the mix engine.
type Service interface {
	// Mix runs the whole pipeline on two decoded tracks and returns
	// the rendered result. The caller owns the returned mix. Options
	// override the target duration or output rate for this call only;
	// the service's render slots and history store stay shared.
	Mix(ctx context.Context, track1, track2 models.Track, opts ...MixOption) (*models.RenderedMix, error)

	// MixFiles decodes two audio files, estimates any metadata the
	// files cannot supply, and mixes them.
	MixFiles(ctx context.Context, path1, path2 string, opts ...MixOption) (*models.RenderedMix, error)

	// Analyze scores two tracks' compatibility without rendering.
	Analyze(a, b models.TrackMetadata) models.CompatibilityReport

	// Export writes the mix to a WAV file and records it in history.
	Export(mix *models.RenderedMix, path string) (models.MixRecord, error)

	History(limit int) ([]models.MixRecord, error)
	GetMix(id string) (models.MixRecord, error)
	DeleteMix(id string) error
	Close() error
}

// Store persists mix history.
type Store interface {
	SaveMix(rec models.MixRecord) error
	ListMixes(limit int) ([]models.MixRecord, error)
	GetMixByID(id string) (models.MixRecord, error)
	DeleteMix(id string) error
	Close() error
}

// Logger is the logging surface the service needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
