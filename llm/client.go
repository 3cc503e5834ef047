package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

// Client is a thin REST client for the generative-content API. One
// request, one response, no retries: a failed generation is surfaced to
// the user once, not papered over.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Model      string
}

// NewClient builds a client for the configured model. The long timeout
// accounts for large generation responses.
func NewClient(baseURL, model string) *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		BaseURL: baseURL,
		Model:   model,
	}
}

type generateRequest struct {
	Contents       []content       `json:"contents"`
	SafetySettings []safetySetting `json:"safetySettings,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func defaultSafetySettings() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]safetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, safetySetting{
			Category:  c,
			Threshold: "BLOCK_MEDIUM_AND_ABOVE",
		})
	}
	return settings
}

// GenerateContent sends one prompt (plus optional binary document
// attachments) and returns the generated text. The API key is per-call
// because every user brings their own.
func (c *Client) GenerateContent(ctx context.Context, apiKey, prompt string, attachments ...models.Attachment) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("no API key configured")
	}

	parts := []part{{Text: prompt}}
	for _, a := range attachments {
		parts = append(parts, part{
			InlineData: &inlineData{MimeType: a.MimeType, Data: a.Data},
		})
	}

	reqBody := generateRequest{
		Contents:       []content{{Parts: parts}},
		SafetySettings: defaultSafetySettings(),
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode generation request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	utils.LogGen("Sending generation request: model=%s prompt=%d chars attachments=%d",
		c.Model, len(prompt), len(attachments))
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generation response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to decode generation response (status %d): %w", resp.StatusCode, err)
	}

	if genResp.Error != nil {
		return "", fmt.Errorf("generation API error (%s): %s", genResp.Error.Status, genResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API returned status %d", resp.StatusCode)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generation API returned no candidates")
	}

	text := ""
	for _, p := range genResp.Candidates[0].Content.Parts {
		text += p.Text
	}

	utils.LogGen("Generation response received: %d chars in %v", len(text), time.Since(start))
	return text, nil
}

// Guard enforces at most one pending generation per owner. There is no
// cancellation path for an in-flight request; a competing one is rejected
// instead of queued, and an abandoned response is simply discarded.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]bool
}

func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]bool)}
}

// Begin reports whether the owner may start a generation now
func (g *Guard) Begin(owner string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inflight[owner] {
		return false
	}
	g.inflight[owner] = true
	return true
}

func (g *Guard) End(owner string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, owner)
}
