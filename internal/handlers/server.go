package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/lfarias/imc-wellness/internal/cache"
	"github.com/lfarias/imc-wellness/internal/config"
	"github.com/lfarias/imc-wellness/internal/gemini"
	"github.com/lfarias/imc-wellness/internal/service"
)

// Server holds the HTTP server and its dependencies
type Server struct {
	config       *config.Config
	assessor     *service.Assessor
	tips         *service.Tips
	cacheManager *cache.Manager
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config) (*Server, error) {
	cacheManager, err := cache.NewManager(cfg.CacheType, cfg.CacheBucket, time.Duration(cfg.CacheDuration)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("creating cache manager: %w", err)
	}

	// Without an API key the tip service degrades to an in-page error
	// message while BMI results keep working.
	var generator service.ContentGenerator
	if cfg.GeminiAPIKey != "" {
		generator = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	} else {
		log.Println("GEMINI_API_KEY is not set; tips are disabled")
	}

	tips := service.NewTips(generator, cacheManager)

	return &Server{
		config:       cfg,
		assessor:     service.NewAssessor(tips),
		tips:         tips,
		cacheManager: cacheManager,
	}, nil
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	// The single-page form
	r.HandleFunc("/", s.indexHandler).Methods("GET")

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.corsMiddleware)
	api.Use(s.loggingMiddleware)

	// Health check
	api.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Assessment
	api.HandleFunc("/assess", s.assessHandler).Methods("POST", "OPTIONS")

	// Cache operations
	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods("GET")
	api.HandleFunc("/cache/clear", s.cacheClearHandler).Methods("DELETE")

	// Configuration
	api.HandleFunc("/config", s.configHandler).Methods("GET")

	return r
}

// WarmupTips pre-generates tips for all classifications; wired to the cron
// scheduler in cmd/server.
func (s *Server) WarmupTips(ctx context.Context) error {
	return s.tips.Warmup(ctx)
}

// Close releases server resources
func (s *Server) Close() error {
	return s.cacheManager.Close()
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
