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

const defaultOpenAIEndpoint = "https://api.openai.com/v1"

// OpenAI calls the OpenAI chat completions REST API.
type OpenAI struct {
	cfg    config.ProviderConfig
	client *http.Client
}

// NewOpenAI creates an OpenAI driver from provider configuration.
func NewOpenAI(cfg config.ProviderConfig) *OpenAI {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultOpenAIEndpoint
	}
	return &OpenAI{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (o *OpenAI) Name() string { return "openai" }

type openAIRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion call.
func (o *OpenAI) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if o.cfg.APIKey == "" {
		return "", &Error{Kind: Unavailable, Provider: o.Name(), Detail: "api key not configured"}
	}

	messages := make([]models.ChatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, models.ChatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, models.ChatMessage{Role: "user", Content: req.Prompt})

	payload, _ := json.Marshal(openAIRequest{
		Model:       o.cfg.Model,
		Messages:    messages,
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	})

	url := o.cfg.Endpoint + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: Unavailable, Provider: o.Name(), Detail: fmt.Sprintf("create request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		// Cancellation and deadline errors keep their identity so callers
		// can tell a timed-out call from an unreachable provider.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", &Error{Kind: Unavailable, Provider: o.Name(), Detail: fmt.Sprintf("request failed: %v", err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return "", &Error{Kind: RateLimited, Provider: o.Name(), Detail: "status 429"}
	}
	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return "", &Error{Kind: Unavailable, Provider: o.Name(), Detail: fmt.Sprintf("status %d: %s", httpResp.StatusCode, truncate(respBody, 200))}
	}

	var oaiResp openAIResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&oaiResp); err != nil {
		return "", &Error{Kind: InvalidResponse, Provider: o.Name(), Detail: fmt.Sprintf("decode response: %v", err)}
	}

	if len(oaiResp.Choices) == 0 || oaiResp.Choices[0].Message.Content == "" {
		return "", &Error{Kind: InvalidResponse, Provider: o.Name(), Detail: "empty choices"}
	}
	return oaiResp.Choices[0].Message.Content, nil
}

// HealthCheck retrieves the configured model to validate credentials.
func (o *OpenAI) HealthCheck(ctx context.Context) error {
	if o.cfg.APIKey == "" {
		return &Error{Kind: Unavailable, Provider: o.Name(), Detail: "api key not configured"}
	}

	url := o.cfg.Endpoint + "/models/" + o.cfg.Model
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return &Error{Kind: Unavailable, Provider: o.Name(), Detail: fmt.Sprintf("create request: %v", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return &Error{Kind: Unavailable, Provider: o.Name(), Detail: fmt.Sprintf("unreachable: %v", err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return &Error{Kind: Unavailable, Provider: o.Name(), Detail: fmt.Sprintf("status %d: %s", httpResp.StatusCode, truncate(respBody, 200))}
	}
	return nil
}
