package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lfarias/imc-wellness/internal/bmi"
	"github.com/lfarias/imc-wellness/internal/config"
	"github.com/lfarias/imc-wellness/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:          "8080",
		Host:          "127.0.0.1",
		GeminiModel:   "test-model",
		CacheType:     "memory",
		CacheDuration: 1,
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(func() { server.Close() })

	return server
}

func TestHealthHandler(t *testing.T) {
	server := newTestServer(t)
	router := server.SetupRoutes()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%v'", response["status"])
	}
}

func TestIndexPage(t *testing.T) {
	server := newTestServer(t)
	router := server.SetupRoutes()

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()

	if !strings.Contains(body, "Calculadora de IMC Personalizada") {
		t.Error("Expected page title in body")
	}
	if !strings.Contains(body, `min="1.0"`) || !strings.Contains(body, `max="300.0"`) {
		t.Error("Expected weight input bounds in body")
	}
	if !strings.Contains(body, `min="0.50"`) || !strings.Contains(body, `max="3.00"`) {
		t.Error("Expected height input bounds in body")
	}
	if !strings.Contains(body, "/api/v1/assess") {
		t.Error("Expected page to post to the assess endpoint")
	}
}

func TestAssessHandlerWithoutAPIKey(t *testing.T) {
	server := newTestServer(t)
	router := server.SetupRoutes()

	payload, _ := json.Marshal(bmi.Measurement{WeightKg: 70.0, HeightM: 1.75})
	req := httptest.NewRequest("POST", "/api/v1/assess", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var assessment service.Assessment
	if err := json.Unmarshal(w.Body.Bytes(), &assessment); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if math.Abs(assessment.BMI-22.857142857142858) > 1e-9 {
		t.Errorf("Expected BMI 22.857142857142858, got %v", assessment.BMI)
	}

	if assessment.Classification != bmi.Normal {
		t.Errorf("Expected classification %q, got %q", bmi.Normal, assessment.Classification)
	}

	// No API key configured in the test server: the numeric result still
	// renders and the tip slot carries the missing-key message.
	if !strings.Contains(assessment.Tip, "não foi configurada") {
		t.Errorf("Expected missing-key message in tip, got: %s", assessment.Tip)
	}

	if len(assessment.Sources) != 0 {
		t.Errorf("Expected empty sources, got %v", assessment.Sources)
	}
}

func TestAssessHandlerInvalidBody(t *testing.T) {
	server := newTestServer(t)
	router := server.SetupRoutes()

	req := httptest.NewRequest("POST", "/api/v1/assess", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestAssessHandlerOutOfRange(t *testing.T) {
	server := newTestServer(t)
	router := server.SetupRoutes()

	payload, _ := json.Marshal(bmi.Measurement{WeightKg: 500.0, HeightM: 1.75})
	req := httptest.NewRequest("POST", "/api/v1/assess", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if !strings.Contains(response["error"], "valores válidos") {
		t.Errorf("Expected user-facing validation message, got: %s", response["error"])
	}
}

func TestCacheStatsHandler(t *testing.T) {
	server := newTestServer(t)
	router := server.SetupRoutes()

	req := httptest.NewRequest("GET", "/api/v1/cache/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if stats["total_entries"] != float64(0) {
		t.Errorf("Expected 0 entries, got %v", stats["total_entries"])
	}
}

func TestCacheClearHandler(t *testing.T) {
	server := newTestServer(t)
	router := server.SetupRoutes()

	req := httptest.NewRequest("DELETE", "/api/v1/cache/clear", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["status"] != "success" {
		t.Errorf("Expected status 'success', got '%s'", response["status"])
	}
}

func TestConfigHandlerIsSanitized(t *testing.T) {
	cfg := &config.Config{
		Port:          "8080",
		Host:          "127.0.0.1",
		GeminiAPIKey:  "super-secret",
		GeminiModel:   "test-model",
		CacheType:     "memory",
		CacheDuration: 1,
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(func() { server.Close() })
	router := server.SetupRoutes()

	req := httptest.NewRequest("GET", "/api/v1/config", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	if strings.Contains(body, "super-secret") {
		t.Error("Expected API key to be omitted from config response")
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["gemini_key_set"] != true {
		t.Errorf("Expected gemini_key_set true, got %v", response["gemini_key_set"])
	}
}

func TestCORSPreflightOnAssess(t *testing.T) {
	server := newTestServer(t)
	router := server.SetupRoutes()

	req := httptest.NewRequest("OPTIONS", "/api/v1/assess", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers on preflight response")
	}
}
