package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

type AnthropicExtractor struct {
	APIKey string
	Model  string
	client *http.Client
}

func NewAnthropicExtractor(apiKey, model string) *AnthropicExtractor {
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	return &AnthropicExtractor{
		APIKey: apiKey,
		Model:  model,
		client: &http.Client{},
	}
}

func (p *AnthropicExtractor) ListModels(ctx context.Context) ([]string, error) {
	// Anthropic API does not currently provide a dynamic list models endpoint.
	// Returning the standard supported models.
	return []string{
		"claude-3-5-sonnet-20240620",
		"claude-3-sonnet-20240229",
		"claude-3-haiku-20240307",
	}, nil
}

type anthropicContent struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Extract calls the Anthropic messages API directly over HTTP and validates
// the structured response
func (p *AnthropicExtractor) Extract(ctx context.Context, req Request) (*Payload, error) {
	var content []anthropicContent
	if req.Kind == KindImage {
		content = []anthropicContent{
			{
				Type: "image",
				Source: &anthropicImageSource{
					Type:      "base64",
					MediaType: req.MediaType,
					Data:      base64.StdEncoding.EncodeToString(req.Content),
				},
			},
			{Type: "text", Text: imagePrompt},
		}
	} else {
		content = []anthropicContent{
			{Type: "text", Text: analysisPrompt(string(req.Content))},
		}
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       p.Model,
		MaxTokens:   4000,
		System:      systemPrompt,
		Temperature: 0.1,
		Messages:    []anthropicMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrExtractionFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", anthropicEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic: %v", ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrExtractionFailed, err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrExtractionFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("%w: anthropic API: %s", ErrExtractionFailed, msg)
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Type != "text" {
		return nil, fmt.Errorf("%w: anthropic returned no text content", ErrExtractionFailed)
	}

	return ParsePayload(parsed.Content[0].Text)
}
