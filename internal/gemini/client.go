// Package gemini is a thin REST client for the Gemini generateContent API,
// used to run the heuristic usability evaluation on an uploaded screenshot.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Sentinel errors for the failure classes the UI reports distinctly.
var (
	ErrMissingKey    = errors.New("gemini: api key is missing")
	ErrRegionBlocked = errors.New("gemini: region not supported")
	ErrAccessDenied  = errors.New("gemini: access denied")
	ErrUnavailable   = errors.New("gemini: service unavailable")
	ErrEmptyResponse = errors.New("gemini: empty response")
)

// Client calls the Gemini API. It enforces no retries and no timeout beyond
// the HTTP client's own; a request runs to completion or failure.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given model, e.g. "gemini-3-flash-preview".
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 45 * time.Second},
	}
}

type generateRequest struct {
	Contents         []content       `json:"contents"`
	GenerationConfig *generationConf `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConf struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// AnalyzeImage sends the base64-encoded screenshot together with the fixed
// evaluation instructions and returns the model's raw text output.
func (c *Client) AnalyzeImage(ctx context.Context, imageBase64, mimeType string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingKey
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MIMEType: mimeType, Data: imageBase64}},
				{Text: SystemPrompt},
			},
		}},
		GenerationConfig: &generationConf{ResponseMIMEType: "application/json"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, body)
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}

// classifyStatus maps the API's error statuses onto the sentinel errors the
// handler translates for the user.
func classifyStatus(status int, body []byte) error {
	msg := string(body)
	switch {
	case status == http.StatusForbidden && strings.Contains(msg, "Region not supported"):
		return fmt.Errorf("%w: %s", ErrRegionBlocked, firstLine(msg))
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAccessDenied, firstLine(msg))
	case status == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, firstLine(msg))
	default:
		return fmt.Errorf("gemini: unexpected status %d: %s", status, firstLine(msg))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
