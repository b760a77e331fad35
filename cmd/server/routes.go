package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ishatailor/AI-DJ/pkg/logger"
)

// setupRoutes registers all HTTP routes and middleware.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/health/metrics", s.handleMetrics)

	mux.HandleFunc("/api/mix", s.handleMix)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/mixes", s.handleMixes)
	mux.HandleFunc("/api/mixes/", s.handleMixByID)

	return corsMiddleware(s.config.AllowedOrigins)(loggingMiddleware(mux))
}

// handleMixes dispatches GET /api/mixes.
func (s *Server) handleMixes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	s.handleListMixes(w, r)
}

// handleMixByID dispatches /api/mixes/{id} and /api/mixes/{id}/audio.
func (s *Server) handleMixByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/mixes/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		s.respondError(w, http.StatusBadRequest, "mix id required")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 2 && parts[1] == "audio" && r.Method == http.MethodGet:
		s.handleMixAudio(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.handleGetMix(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.handleDeleteMix(w, r, id)
	default:
		s.respondError(w, http.StatusNotFound, "unknown mix endpoint")
	}
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				allowed = true
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs all HTTP requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.GetLogger().Info("%s %s from %s -> %d",
			r.Method, r.URL.Path, getClientIP(r), wrapped.statusCode)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	handler := s.setupRoutes()

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Info("🚀 AI-DJ server starting on %s", addr)
	s.log.Info("   Database: %s", s.config.DBPath)
	s.log.Info("   Output dir: %s", s.config.OutputDir)
	s.log.Info("   CORS Origins: %v", s.config.AllowedOrigins)
	s.log.Info("Endpoints:")
	s.log.Info("   GET    /health                  - Health check")
	s.log.Info("   GET    /api/health/metrics      - Server metrics")
	s.log.Info("   POST   /api/mix                 - Render a mix from two uploads")
	s.log.Info("   POST   /api/analyze             - Score two uploads without rendering")
	s.log.Info("   GET    /api/mixes               - List mix history")
	s.log.Info("   GET    /api/mixes/{id}          - Get mix by ID")
	s.log.Info("   GET    /api/mixes/{id}/audio    - Download rendered WAV")
	s.log.Info("   DELETE /api/mixes/{id}          - Delete mix by ID")

	return http.ListenAndServe(addr, handler)
}
