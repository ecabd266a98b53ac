package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lfarias/imc-wellness/internal/bmi"
	"github.com/lfarias/imc-wellness/internal/service"
)

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   "v1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type assessErrorResponse struct {
	Error string `json:"error"`
}

// assessHandler computes BMI, classifies it and attaches the wellness tip
func (s *Server) assessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	w.Header().Set("Content-Type", "application/json")

	var m bmi.Measurement
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(assessErrorResponse{Error: "Invalid request body"})
		return
	}

	assessment, err := s.assessor.Assess(ctx, m)
	if err != nil {
		var validationErr *bmi.ValidationError
		status := http.StatusInternalServerError
		if errors.As(err, &validationErr) || errors.Is(err, bmi.ErrOverflow) {
			status = http.StatusBadRequest
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(assessErrorResponse{Error: service.UserErrorMessage(err)})
		return
	}

	json.NewEncoder(w).Encode(assessment)
}

// cacheStatsHandler returns cache statistics
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.cacheManager.GetStats(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error getting cache stats: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// cacheClearHandler clears the cache
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.cacheManager.Clear(ctx); err != nil {
		http.Error(w, fmt.Sprintf("Error clearing cache: %v", err), http.StatusInternalServerError)
		return
	}

	response := map[string]string{
		"status":  "success",
		"message": "Cache cleared successfully",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// configHandler returns configuration (sanitized)
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	// Return sanitized configuration without sensitive data
	response := map[string]interface{}{
		"port":                 s.config.Port,
		"host":                 s.config.Host,
		"gemini_model":         s.config.GeminiModel,
		"gemini_key_set":       s.config.GeminiAPIKey != "",
		"cache_type":           s.config.CacheType,
		"cache_duration_hours": s.config.CacheDuration,
		"tip_warmup_schedule":  s.config.TipWarmupSchedule,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
