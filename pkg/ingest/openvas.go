package ingest

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/user/riskcore/pkg/model"
)

// XML structures for OpenVAS/GVM report results. The results element sits
// at different depths depending on export flavor, so the walker collects
// result elements from both the top level and a nested report element.
type openvasReport struct {
	Results openvasResults `xml:"results"`
	Report  *openvasInner  `xml:"report"`
}
type openvasInner struct {
	Results openvasResults `xml:"results"`
}
type openvasResults struct {
	Results []openvasResult `xml:"result"`
}
type openvasResult struct {
	Host        string     `xml:"host"`
	Port        string     `xml:"port"`
	Threat      string     `xml:"threat"`
	Severity    float64    `xml:"severity"`
	Description string     `xml:"description"`
	NVT         openvasNVT `xml:"nvt"`
}
type openvasNVT struct {
	OID      string  `xml:"oid,attr"`
	Name     string  `xml:"name"`
	CVE      string  `xml:"cve"`
	CVSSBase float64 `xml:"cvss_base"`
	Solution string  `xml:"solution"`
}

// DecodeOpenVAS walks OpenVAS result elements and emits vulnerability
// drafts. Results with a Log/zero threat are informational noise and are
// skipped, matching the Nessus decoder's behavior.
func DecodeOpenVAS(data []byte) ([]model.VulnerabilityDraft, error) {
	var report openvasReport
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: openvas xml: %v", ErrMalformedInput, err)
	}

	results := report.Results.Results
	if report.Report != nil {
		results = append(results, report.Report.Results.Results...)
	}

	var drafts []model.VulnerabilityDraft
	for _, res := range results {
		severity := openvasSeverity(res)
		if severity == "" {
			continue
		}

		cvss := res.NVT.CVSSBase
		if cvss == 0 {
			cvss = res.Severity
		}

		cveID := strings.TrimSpace(res.NVT.CVE)
		if cveID == "" || strings.EqualFold(cveID, "NOCVE") {
			cveID = fmt.Sprintf("OPENVAS-%s", res.NVT.OID)
		}

		title := res.NVT.Name
		if title == "" {
			title = "Unknown Vulnerability"
		}

		component := res.Port
		if component == "" {
			component = "Unknown"
		}

		drafts = append(drafts, model.VulnerabilityDraft{
			Host:        strings.TrimSpace(res.Host),
			CVEID:       cveID,
			Title:       title,
			Description: res.Description,
			Severity:    string(severity),
			CVSSScore:   cvss,
			Status:      model.StatusOpen,
			Source:      "OpenVAS Scanner",
			Component:   component,
			Solution:    res.NVT.Solution,
		})
	}
	return drafts, nil
}

// openvasSeverity prefers the numeric severity, falling back to the threat
// label. An empty return means the result carries no actionable severity.
func openvasSeverity(res openvasResult) model.Severity {
	if res.Severity > 0 {
		switch {
		case res.Severity >= 9.0:
			return model.SeverityCritical
		case res.Severity >= 7.0:
			return model.SeverityHigh
		case res.Severity >= 4.0:
			return model.SeverityMedium
		default:
			return model.SeverityLow
		}
	}

	switch strings.ToLower(res.Threat) {
	case "critical":
		return model.SeverityCritical
	case "high":
		return model.SeverityHigh
	case "medium":
		return model.SeverityMedium
	case "low":
		return model.SeverityLow
	}
	return ""
}
