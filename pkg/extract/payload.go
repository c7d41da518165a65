package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/user/riskcore/pkg/model"
)

// Summary carries extraction counts and the confidence (0-100) forwarded
// to callers so low-confidence extractions can be flagged for review.
type Summary struct {
	AssetsFound          int     `json:"assetsFound"`
	VulnerabilitiesFound int     `json:"vulnerabilitiesFound"`
	PentestFindingsFound int     `json:"pentestFindingsFound"`
	CriticalVulns        int     `json:"criticalVulns"`
	HighVulns            int     `json:"highVulns"`
	Confidence           float64 `json:"confidence"`
}

// Payload is the validated extraction service response
type Payload struct {
	Assets          []model.AssetDraft          `json:"assets"`
	Vulnerabilities []model.VulnerabilityDraft  `json:"vulnerabilities"`
	PentestFindings []model.PentestFindingDraft `json:"pentestFindings"`
	Summary         Summary                     `json:"summary"`
}

// rawPayload defers each top-level key so a malformed array degrades to
// empty instead of failing the whole payload
type rawPayload struct {
	Assets          json.RawMessage `json:"assets"`
	Vulnerabilities json.RawMessage `json:"vulnerabilities"`
	PentestFindings json.RawMessage `json:"pentestFindings"`
	Summary         json.RawMessage `json:"summary"`
}

// ParsePayload extracts the JSON object from a model response and validates
// its shape. Models occasionally wrap the object in prose or markdown
// fences, so parsing starts at the first brace and ends at the last.
func ParsePayload(response string) (*Payload, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrExtractionFailed)
	}

	var raw rawPayload
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrExtractionFailed, err)
	}

	p := &Payload{
		Assets:          []model.AssetDraft{},
		Vulnerabilities: []model.VulnerabilityDraft{},
		PentestFindings: []model.PentestFindingDraft{},
	}
	decodeArray(raw.Assets, &p.Assets, "assets")
	decodeArray(raw.Vulnerabilities, &p.Vulnerabilities, "vulnerabilities")
	decodeArray(raw.PentestFindings, &p.PentestFindings, "pentestFindings")

	if len(raw.Summary) > 0 {
		if err := json.Unmarshal(raw.Summary, &p.Summary); err != nil {
			logrus.WithError(err).Debug("discarding malformed extraction summary")
			p.Summary = Summary{}
		}
	}
	if p.Summary.Confidence < 0 {
		p.Summary.Confidence = 0
	}
	if p.Summary.Confidence > 100 {
		p.Summary.Confidence = 100
	}

	return p, nil
}

func decodeArray[T any](raw json.RawMessage, dst *[]T, key string) {
	if len(raw) == 0 {
		return
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		logrus.WithError(err).WithField("key", key).Debug("discarding malformed extraction array")
		return
	}
	if out != nil {
		*dst = out
	}
}
