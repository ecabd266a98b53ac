package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	apiKey := "test-api-key"
	model := "gemini-2.5-flash-preview-09-2025"

	client := NewClient(apiKey, model)

	if client == nil {
		t.Fatal("Expected non-nil client")
	}

	if client.apiKey != apiKey {
		t.Errorf("Expected API key '%s', got '%s'", apiKey, client.apiKey)
	}

	if client.model != model {
		t.Errorf("Expected model '%s', got '%s'", model, client.model)
	}

	if client.httpClient == nil {
		t.Error("Expected non-nil HTTP client")
	}

	if !strings.Contains(client.baseURL, "generativelanguage.googleapis.com") {
		t.Errorf("Expected base URL to contain Google API domain, got '%s'", client.baseURL)
	}
}

func TestGenerateContentRequestShape(t *testing.T) {
	var captured struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		Tools             []map[string]interface{} `json:"tools"`
		SystemInstruction *struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"systemInstruction"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("Expected key query parameter 'test-key', got '%s'", r.URL.Query().Get("key"))
		}

		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"dica gerada"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model")
	client.baseURL = server.URL

	resp, err := client.GenerateContent(context.Background(), "system prompt", "user query")
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}

	if resp.Text != "dica gerada" {
		t.Errorf("Expected text 'dica gerada', got '%s'", resp.Text)
	}

	if len(captured.Contents) != 1 || len(captured.Contents[0].Parts) != 1 {
		t.Fatalf("Expected one content with one part, got %+v", captured.Contents)
	}
	if captured.Contents[0].Parts[0].Text != "user query" {
		t.Errorf("Expected user query in contents, got '%s'", captured.Contents[0].Parts[0].Text)
	}

	if captured.SystemInstruction == nil || len(captured.SystemInstruction.Parts) != 1 {
		t.Fatal("Expected systemInstruction with one part")
	}
	if captured.SystemInstruction.Parts[0].Text != "system prompt" {
		t.Errorf("Expected system prompt in systemInstruction, got '%s'", captured.SystemInstruction.Parts[0].Text)
	}

	if len(captured.Tools) != 1 {
		t.Fatalf("Expected one tool entry, got %d", len(captured.Tools))
	}
	if _, ok := captured.Tools[0]["google_search"]; !ok {
		t.Error("Expected google_search grounding tool in request")
	}
}

func TestGenerateContentGroundingSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "dicas com fontes"}]},
				"groundingMetadata": {
					"groundingAttributions": [
						{"web": {"title": "OMS", "uri": "https://who.int/bmi"}},
						{"web": {"title": "sem uri"}},
						{}
					]
				}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model")
	client.baseURL = server.URL

	resp, err := client.GenerateContent(context.Background(), "sys", "query")
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}

	if len(resp.Sources) != 1 {
		t.Fatalf("Expected 1 source (attributions without URI skipped), got %d", len(resp.Sources))
	}

	if resp.Sources[0].Title != "OMS" || resp.Sources[0].URL != "https://who.int/bmi" {
		t.Errorf("Unexpected source: %+v", resp.Sources[0])
	}
}

func TestGenerateContentEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model")
	client.baseURL = server.URL

	resp, err := client.GenerateContent(context.Background(), "sys", "query")
	if err != nil {
		t.Fatalf("Expected fallback text, got error: %v", err)
	}

	if resp.Text != FallbackText {
		t.Errorf("Expected fallback text '%s', got '%s'", FallbackText, resp.Text)
	}

	if len(resp.Sources) != 0 {
		t.Errorf("Expected empty sources, got %v", resp.Sources)
	}
}

func TestGenerateContentHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model")
	client.baseURL = server.URL

	_, err := client.GenerateContent(context.Background(), "sys", "query")
	if err == nil {
		t.Fatal("Expected error for 500 status")
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %T: %v", err, err)
	}

	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected error to mention status code, got: %v", err)
	}
}

func TestGenerateContentConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	client := NewClient("test-key", "test-model")
	client.baseURL = server.URL

	_, err := client.GenerateContent(context.Background(), "sys", "query")
	if err == nil {
		t.Fatal("Expected error for refused connection")
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %T: %v", err, err)
	}
}

func TestGenerateContentMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model")
	client.baseURL = server.URL

	_, err := client.GenerateContent(context.Background(), "sys", "query")
	if err == nil {
		t.Fatal("Expected error for malformed response body")
	}

	var responseErr *ResponseError
	if !errors.As(err, &responseErr) {
		t.Fatalf("Expected ResponseError, got %T: %v", err, err)
	}
}
