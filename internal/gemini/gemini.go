package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FallbackText is returned when the API answers without any generated text.
const FallbackText = "Não foi possível gerar as dicas."

// Client handles Gemini API operations
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Gemini API client
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Source is one web citation attached to a grounded response.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// GenerateResponse carries the generated text plus any grounding sources.
type GenerateResponse struct {
	Text        string    `json:"text"`
	Sources     []Source  `json:"sources"`
	GeneratedAt time.Time `json:"generated_at"`
}

// TransportError wraps network-level failures, including non-2xx statuses.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// ResponseError wraps failures while decoding the API response body.
type ResponseError struct {
	Err error
}

func (e *ResponseError) Error() string { return e.Err.Error() }
func (e *ResponseError) Unwrap() error { return e.Err }

// geminiRequest represents the request structure for Gemini API
type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	Tools             []geminiTool    `json:"tools,omitempty"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiTool enables Google Search grounding when present.
type geminiTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

// geminiResponse represents the response structure from Gemini API
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content           geminiContent      `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata"`
}

type groundingMetadata struct {
	GroundingAttributions []groundingAttribution `json:"groundingAttributions"`
}

type groundingAttribution struct {
	Web *groundingWeb `json:"web"`
}

type groundingWeb struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// GenerateContent sends one grounded generation request and returns the
// first candidate's text plus its web citations. A response without any
// candidate text yields FallbackText, not an error.
func (c *Client) GenerateContent(ctx context.Context, systemPrompt, userQuery string) (*GenerateResponse, error) {
	geminiReq := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{
					{Text: userQuery},
				},
			},
		},
		Tools: []geminiTool{{}},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{
				{Text: systemPrompt},
			},
		},
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	body, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("sending request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &TransportError{Err: fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))}
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, &ResponseError{Err: fmt.Errorf("decoding response: %w", err)}
	}

	return parseResponse(geminiResp), nil
}

// parseResponse extracts the advisory text and citation list from the
// decoded API response.
func parseResponse(resp geminiResponse) *GenerateResponse {
	result := &GenerateResponse{
		Text:        FallbackText,
		Sources:     []Source{},
		GeneratedAt: time.Now(),
	}

	if len(resp.Candidates) == 0 {
		return result
	}

	candidate := resp.Candidates[0]
	if len(candidate.Content.Parts) > 0 && candidate.Content.Parts[0].Text != "" {
		result.Text = candidate.Content.Parts[0].Text
	}

	if candidate.GroundingMetadata == nil {
		return result
	}

	for _, attr := range candidate.GroundingMetadata.GroundingAttributions {
		// Attributions without a URI cannot be rendered as links.
		if attr.Web == nil || attr.Web.URI == "" {
			continue
		}
		result.Sources = append(result.Sources, Source{
			Title: attr.Web.Title,
			URL:   attr.Web.URI,
		})
	}

	return result
}
