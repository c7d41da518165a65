package extract

import (
	"context"
	"errors"
	"fmt"
)

// ErrExtractionFailed covers transport errors, timeouts and unusable
// responses from the extraction service. It is retryable by the caller and
// never degrades to fabricated records.
var ErrExtractionFailed = errors.New("extraction failed")

// Kind declares how the extraction service should read the content
type Kind string

const (
	KindImage Kind = "image"
	KindText  Kind = "text"
)

// Request carries raw file content to the extraction service
type Request struct {
	Content   []byte
	Kind      Kind
	MediaType string // required for images, e.g. "image/png"
}

// Extractor is the external extraction capability. Implementations must
// honor the request context's deadline.
type Extractor interface {
	Extract(ctx context.Context, req Request) (*Payload, error)
	ListModels(ctx context.Context) ([]string, error)
}

// NewExtractor builds the configured extraction provider
func NewExtractor(ctx context.Context, providerName, apiKey, modelName string) (Extractor, error) {
	switch providerName {
	case "gemini":
		return NewGeminiExtractor(ctx, apiKey, modelName)
	case "anthropic":
		return NewAnthropicExtractor(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
}

const analysisPromptHeader = `Analyze the following cybersecurity content and return a valid JSON object. The JSON object should have the following structure:
{
  "assets": [{"name": "...", "type": "...", "ip_address": "...", "hostname": "...", "ports": [], "services": [], "operating_system": "...", "criticality": 1-5, "exposure_score": 0-100}],
  "vulnerabilities": [{"cve_id": "...", "title": "...", "description": "...", "severity": "...", "cvss_score": 0.0-10.0, "status": "...", "component": "...", "solution": "..."}],
  "pentestFindings": [{"finding_id": "...", "title": "...", "description": "...", "severity": "...", "affected_assets": [], "recommendation": "...", "status": "..."}],
  "summary": {"assetsFound": 0, "vulnerabilitiesFound": 0, "pentestFindingsFound": 0, "criticalVulns": 0, "highVulns": 0, "confidence": 0-100}
}
Content to analyze:
<document>
%s
</document>
Important:
- Your response MUST be a single, valid JSON object. Do not include any text, explanation, or markdown formatting before or after the JSON object.
- If no relevant data is found, return empty arrays.
- Populate all fields with realistic data based on the content. For missing specific data, generate plausible placeholders.
- Set the 'confidence' score (0-100) based on how clear and complete the source data is.`

const imagePrompt = `Extract all cybersecurity-related information from this image. This includes vulnerability scans, penetration test results, security assessments, network diagrams and asset inventories. Then return a single valid JSON object with the structure:
{
  "assets": [{"name": "...", "type": "...", "ip_address": "...", "hostname": "...", "ports": [], "services": [], "operating_system": "...", "criticality": 1-5, "exposure_score": 0-100}],
  "vulnerabilities": [{"cve_id": "...", "title": "...", "description": "...", "severity": "...", "cvss_score": 0.0-10.0, "status": "...", "component": "...", "solution": "..."}],
  "pentestFindings": [{"finding_id": "...", "title": "...", "description": "...", "severity": "...", "affected_assets": [], "recommendation": "...", "status": "..."}],
  "summary": {"assetsFound": 0, "vulnerabilitiesFound": 0, "pentestFindingsFound": 0, "criticalVulns": 0, "highVulns": 0, "confidence": 0-100}
}
Return only the JSON object, with empty arrays when no relevant data is visible.`

const systemPrompt = "You are a cybersecurity expert that converts unstructured text into a structured JSON format. Return only the JSON object."

func analysisPrompt(content string) string {
	return fmt.Sprintf(analysisPromptHeader, content)
}
