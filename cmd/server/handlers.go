package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ishatailor/AI-DJ/internal/audio"
	"github.com/ishatailor/AI-DJ/internal/estimate"
	"github.com/ishatailor/AI-DJ/internal/storage"
	"github.com/ishatailor/AI-DJ/pkg/logger"
	"github.com/ishatailor/AI-DJ/pkg/mixdj"
	"github.com/ishatailor/AI-DJ/pkg/models"
)

// Server encapsulates the HTTP server and its dependencies.
type Server struct {
	service mixdj.Service
	config  *ServerConfig
	log     mixdj.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	OutputDir      string
	AllowedOrigins []string
}

func NewServer(service mixdj.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "AI-DJ API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":   "GET /health",
			"metrics":  "GET /api/health/metrics",
			"mix":      "POST /api/mix",
			"analyze":  "POST /api/analyze",
			"mixes":    "GET /api/mixes",
			"getMix":   "GET /api/mixes/{id}",
			"mixAudio": "GET /api/mixes/{id}/audio",
			"delete":   "DELETE /api/mixes/{id}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.History(0)
	if err != nil {
		s.log.Error("failed to get mix count: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}
	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		MixCount:     len(records),
		OutputDir:    s.config.OutputDir,
	})
}

// handleMix handles POST /api/mix (multipart upload of two tracks).
func (s *Server) handleMix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		s.log.Error("failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	params, err := parseMixParams(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	path1, cleanup1, err := s.saveUpload(r, "track1")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup1()

	path2, cleanup2, err := s.saveUpload(r, "track2")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup2()

	var opts []mixdj.MixOption
	if params.Duration > 0 {
		opts = append(opts, mixdj.ForDuration(params.Duration))
	}
	if params.SampleRate > 0 {
		opts = append(opts, mixdj.AtSampleRate(params.SampleRate))
	}

	s.log.Info("mixing upload %s + %s", filepath.Base(path1), filepath.Base(path2))
	mix, err := s.service.MixFiles(r.Context(), path1, path2, opts...)
	if err != nil {
		s.log.Error("mix failed: %v", err)
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to mix: %v", err))
		return
	}

	outPath := filepath.Join(s.config.OutputDir, fmt.Sprintf("mix_%d.wav", time.Now().UnixNano()))
	rec, err := s.service.Export(mix, outPath)
	if err != nil {
		s.log.Error("export failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to export mix")
		return
	}

	s.respondJSON(w, http.StatusCreated, MixResponse{
		Message:       "Mix rendered successfully",
		ID:            rec.ID,
		Track1:        mix.TrackNames[0],
		Track2:        mix.TrackNames[1],
		Duration:      mix.Duration,
		SampleRate:    mix.SampleRate,
		AudioURL:      fmt.Sprintf("/api/mixes/%s/audio", rec.ID),
		Compatibility: toCompatibilityDTO(mix.Compatibility),
		Timeline:      mix.Timeline,
		Selections:    mix.Selections,
	})
}

// handleAnalyze handles POST /api/analyze (multipart upload of two
// tracks, no rendering).
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	metas := make([]models.TrackMetadata, 2)
	for i, field := range []string{"track1", "track2"} {
		path, cleanup, err := s.saveUpload(r, field)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		buf, err := audio.DecodeFile(path)
		cleanup()
		if err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to decode %s: %v", field, err))
			return
		}
		metas[i] = estimate.Metadata(path, buf)
	}

	s.respondJSON(w, http.StatusOK, AnalyzeResponse{
		Track1:        toTrackDTO(metas[0]),
		Track2:        toTrackDTO(metas[1]),
		Compatibility: toCompatibilityDTO(s.service.Analyze(metas[0], metas[1])),
	})
}

// handleListMixes handles GET /api/mixes
func (s *Server) handleListMixes(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.History(0)
	if err != nil {
		s.log.Error("failed to list mixes: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve mixes")
		return
	}
	dtos := make([]MixRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toMixRecordDTO(rec)
	}
	s.respondJSON(w, http.StatusOK, ListMixesResponse{Mixes: dtos, Count: len(dtos)})
}

// handleGetMix handles GET /api/mixes/{id}
func (s *Server) handleGetMix(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.service.GetMix(id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Mix %s not found", id))
		return
	}
	if err != nil {
		s.log.Error("failed to get mix %s: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve mix")
		return
	}
	s.respondJSON(w, http.StatusOK, toMixRecordDTO(rec))
}

// handleMixAudio handles GET /api/mixes/{id}/audio
func (s *Server) handleMixAudio(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.service.GetMix(id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Mix %s not found", id))
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve mix")
		return
	}
	if _, err := os.Stat(rec.OutputPath); err != nil {
		s.log.Warn("audio file missing for mix %s: %v", id, err)
		s.respondError(w, http.StatusGone, "Audio file no longer available")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, rec.OutputPath)
}

// handleDeleteMix handles DELETE /api/mixes/{id}
func (s *Server) handleDeleteMix(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.service.GetMix(id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Mix %s not found", id))
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve mix")
		return
	}
	if err := s.service.DeleteMix(id); err != nil {
		s.log.Error("failed to delete mix %s: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete mix")
		return
	}
	if err := os.Remove(rec.OutputPath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove audio file %s: %v", rec.OutputPath, err)
	}
	s.log.Info("deleted mix %s (%s + %s)", id, rec.Track1Name, rec.Track2Name)
	s.respondJSON(w, http.StatusOK, DeleteMixResponse{
		Message: "Mix deleted successfully",
		ID:      id,
	})
}

// saveUpload copies a multipart form file into the temp dir and
// returns its path plus a cleanup func.
func (s *Server) saveUpload(r *http.Request, field string) (string, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("%s file is required", field)
	}
	defer file.Close()
	return s.writeTempFile(file, header)
}

func (s *Server) writeTempFile(file multipart.File, header *multipart.FileHeader) (string, func(), error) {
	tempFile := filepath.Join(s.config.TempDir,
		fmt.Sprintf("upload_%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename)))
	out, err := os.Create(tempFile)
	if err != nil {
		return "", nil, fmt.Errorf("failed to process upload: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(tempFile)
		return "", nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tempFile)
		return "", nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}
	return tempFile, func() { os.Remove(tempFile) }, nil
}

func parseMixParams(r *http.Request) (MixRequestParams, error) {
	var params MixRequestParams
	if v := r.FormValue("duration"); v != "" {
		if _, err := fmt.Sscanf(v, "%f", &params.Duration); err != nil {
			return params, fmt.Errorf("invalid duration: %s", v)
		}
	}
	if v := r.FormValue("sample_rate"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &params.SampleRate); err != nil {
			return params, fmt.Errorf("invalid sample_rate: %s", v)
		}
	}
	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

func toMixRecordDTO(rec models.MixRecord) MixRecordDTO {
	return MixRecordDTO{
		ID:               rec.ID,
		Track1:           rec.Track1Name,
		Track2:           rec.Track2Name,
		Score:            rec.Score,
		KeyCompatibility: string(rec.KeyCompatibility),
		Duration:         rec.Duration,
		AudioURL:         fmt.Sprintf("/api/mixes/%s/audio", rec.ID),
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
	}
}
