package main

import (
	"fmt"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

// Upload limits for POST /api/mix.
const (
	// MaxUploadBytes bounds the multipart form size (two tracks).
	MaxUploadBytes = 200 << 20

	// MaxMixDurationSec caps a requested mix length.
	MaxMixDurationSec = 600
)

// MixRequestParams are the optional form fields of POST /api/mix.
type MixRequestParams struct {
	Duration   float64
	SampleRate int
}

// Validate checks the parsed parameters.
func (p *MixRequestParams) Validate() error {
	if p.Duration < 0 || p.Duration > MaxMixDurationSec {
		return fmt.Errorf("duration must be in (0, %d] seconds", MaxMixDurationSec)
	}
	if p.SampleRate < 0 || (p.SampleRate > 0 && p.SampleRate < 8000) {
		return fmt.Errorf("sample_rate must be 0 or at least 8000")
	}
	return nil
}

// MixResponse is the response for a successful POST /api/mix.
type MixResponse struct {
	Message       string                     `json:"message"`
	ID            string                     `json:"id"`
	Track1        string                     `json:"track1"`
	Track2        string                     `json:"track2"`
	Duration      float64                    `json:"duration"`
	SampleRate    int                        `json:"sample_rate"`
	AudioURL      string                     `json:"audio_url"`
	Compatibility CompatibilityDTO           `json:"compatibility"`
	Timeline      models.Timeline            `json:"timeline"`
	Selections    [2]models.SectionSelection `json:"selections"`
}

// CompatibilityDTO mirrors the analyzer report in API responses.
type CompatibilityDTO struct {
	Score           int      `json:"score"`
	BPMDifference   float64  `json:"bpm_difference"`
	Key             string   `json:"key_compatibility"`
	EnergyBalance   float64  `json:"energy_balance"`
	DurationRatio   float64  `json:"duration_ratio"`
	Recommendations []string `json:"recommendations,omitempty"`
}

func toCompatibilityDTO(rep models.CompatibilityReport) CompatibilityDTO {
	return CompatibilityDTO{
		Score:           rep.Score,
		BPMDifference:   rep.BPMDifference,
		Key:             string(rep.Key),
		EnergyBalance:   rep.EnergyBalance,
		DurationRatio:   rep.DurationRatio,
		Recommendations: rep.Recommendations,
	}
}

// AnalyzeResponse is the response for POST /api/analyze.
type AnalyzeResponse struct {
	Track1        TrackDTO         `json:"track1"`
	Track2        TrackDTO         `json:"track2"`
	Compatibility CompatibilityDTO `json:"compatibility"`
}

// TrackDTO summarizes estimated track metadata.
type TrackDTO struct {
	Name         string  `json:"name"`
	Duration     float64 `json:"duration"`
	Tempo        float64 `json:"tempo"`
	Key          string  `json:"key,omitempty"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
}

func toTrackDTO(meta models.TrackMetadata) TrackDTO {
	return TrackDTO{
		Name:         meta.Name,
		Duration:     meta.Duration,
		Tempo:        meta.Tempo,
		Key:          meta.Key,
		Energy:       meta.Energy,
		Danceability: meta.Danceability,
	}
}

// MixRecordDTO represents one history entry.
type MixRecordDTO struct {
	ID               string  `json:"id"`
	Track1           string  `json:"track1"`
	Track2           string  `json:"track2"`
	Score            int     `json:"score"`
	KeyCompatibility string  `json:"key_compatibility"`
	Duration         float64 `json:"duration"`
	AudioURL         string  `json:"audio_url"`
	CreatedAt        string  `json:"created_at"`
}

// ListMixesResponse is the response for GET /api/mixes.
type ListMixesResponse struct {
	Mixes []MixRecordDTO `json:"mixes"`
	Count int            `json:"count"`
}

// DeleteMixResponse is the response for DELETE /api/mixes/{id}.
type DeleteMixResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MetricsResponse provides server health and history metrics.
type MetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	MixCount     int    `json:"mix_count"`
	OutputDir    string `json:"output_dir"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
