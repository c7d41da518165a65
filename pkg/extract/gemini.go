package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiExtractor(ctx context.Context, apiKey string, modelName string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiExtractor{client: client, model: model}, nil
}

func (g *GeminiExtractor) ListModels(ctx context.Context) ([]string, error) {
	iter := g.client.ListModels(ctx)
	var names []string
	for {
		m, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		// Only list models that support content generation (rough filter)
		if strings.Contains(m.Name, "gemini") {
			// m.Name is like "models/gemini-1.5-flash", we usually want just the suffix
			names = append(names, strings.TrimPrefix(m.Name, "models/"))
		}
	}
	return names, nil
}

// Extract sends the file content to Gemini and validates the structured
// response. Images go as inline data with the vision prompt; everything
// else is embedded in the text analysis prompt.
func (g *GeminiExtractor) Extract(ctx context.Context, req Request) (*Payload, error) {
	var parts []genai.Part
	if req.Kind == KindImage {
		format := strings.TrimPrefix(req.MediaType, "image/")
		parts = []genai.Part{
			genai.ImageData(format, req.Content),
			genai.Text(imagePrompt),
		}
	} else {
		parts = []genai.Part{
			genai.Text(analysisPrompt(string(req.Content))),
		}
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", ErrExtractionFailed, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: gemini returned no candidates", ErrExtractionFailed)
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText += string(text)
		}
	}

	return ParsePayload(responseText)
}

func (g *GeminiExtractor) Close() {
	g.client.Close()
}
