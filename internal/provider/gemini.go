package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oslobeats/concierge/internal/config"
	"github.com/oslobeats/concierge/pkg/models"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com"

// Gemini calls the Google Generative Language REST API.
type Gemini struct {
	cfg    config.ProviderConfig
	client *http.Client
}

// NewGemini creates a Gemini driver from provider configuration.
func NewGemini(cfg config.ProviderConfig) *Gemini {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultGeminiEndpoint
	}
	return &Gemini{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (g *Gemini) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Complete sends one generateContent call.
func (g *Gemini) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if g.cfg.APIKey == "" {
		return "", &Error{Kind: Unavailable, Provider: g.Name(), Detail: "api key not configured"}
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	body.GenerationConfig.Temperature = g.cfg.Temperature
	body.GenerationConfig.MaxOutputTokens = g.cfg.MaxTokens

	payload, _ := json.Marshal(body)

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.cfg.Endpoint, g.cfg.Model, g.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: Unavailable, Provider: g.Name(), Detail: fmt.Sprintf("create request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		// Cancellation and deadline errors keep their identity so callers
		// can tell a timed-out call from an unreachable provider.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", &Error{Kind: Unavailable, Provider: g.Name(), Detail: fmt.Sprintf("request failed: %v", err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return "", &Error{Kind: RateLimited, Provider: g.Name(), Detail: "status 429"}
	}
	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return "", &Error{Kind: Unavailable, Provider: g.Name(), Detail: fmt.Sprintf("status %d: %s", httpResp.StatusCode, truncate(respBody, 200))}
	}

	var gemResp geminiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&gemResp); err != nil {
		return "", &Error{Kind: InvalidResponse, Provider: g.Name(), Detail: fmt.Sprintf("decode response: %v", err)}
	}

	text := ""
	if len(gemResp.Candidates) > 0 {
		for _, p := range gemResp.Candidates[0].Content.Parts {
			text += p.Text
		}
	}
	if text == "" {
		return "", &Error{Kind: InvalidResponse, Provider: g.Name(), Detail: "empty candidate content"}
	}
	return text, nil
}

// HealthCheck lists models to validate credentials without generating text.
func (g *Gemini) HealthCheck(ctx context.Context) error {
	if g.cfg.APIKey == "" {
		return &Error{Kind: Unavailable, Provider: g.Name(), Detail: "api key not configured"}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s?key=%s", g.cfg.Endpoint, g.cfg.Model, g.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return &Error{Kind: Unavailable, Provider: g.Name(), Detail: fmt.Sprintf("create request: %v", err)}
	}

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return &Error{Kind: Unavailable, Provider: g.Name(), Detail: fmt.Sprintf("unreachable: %v", err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return &Error{Kind: Unavailable, Provider: g.Name(), Detail: fmt.Sprintf("status %d: %s", httpResp.StatusCode, truncate(respBody, 200))}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
