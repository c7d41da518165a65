package ingest

import (
	"encoding/xml"
	"fmt"

	"github.com/user/riskcore/pkg/model"
)

// XML structures for Nessus client data (.nessus and XML export share them)
type nessusClientData struct {
	Report nessusReport `xml:"Report"`
}
type nessusReport struct {
	Hosts []nessusReportHost `xml:"ReportHost"`
}
type nessusReportHost struct {
	Name  string             `xml:"name,attr"`
	Items []nessusReportItem `xml:"ReportItem"`
}
type nessusReportItem struct {
	PluginID      string  `xml:"pluginID,attr"`
	PluginName    string  `xml:"pluginName,attr"`
	Severity      int     `xml:"severity,attr"`
	Description   string  `xml:"description"`
	Solution      string  `xml:"solution"`
	CVSSBaseScore float64 `xml:"cvss_base_score"`
	CVSSVector    string  `xml:"cvss_vector"`
	CVE           string  `xml:"cve"`
	SvcName       string  `xml:"svc_name"`
}

// nessusSeverities maps the scanner's 0-4 integer scale to the normalized
// enum. Unknown or out-of-range values map to Info.
var nessusSeverities = map[int]model.Severity{
	4: model.SeverityCritical,
	3: model.SeverityHigh,
	2: model.SeverityMedium,
	1: model.SeverityLow,
}

// DecodeNessus walks per-host report items and emits vulnerability drafts.
// Items with a zero severity are informational noise and are skipped.
// Each draft carries the report host identifier for asset resolution.
func DecodeNessus(data []byte) ([]model.VulnerabilityDraft, error) {
	var report nessusClientData
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: nessus xml: %v", ErrMalformedInput, err)
	}

	var drafts []model.VulnerabilityDraft
	for _, host := range report.Report.Hosts {
		for _, item := range host.Items {
			if item.PluginID == "" || item.Severity <= 0 {
				continue
			}

			severity, ok := nessusSeverities[item.Severity]
			if !ok {
				severity = model.SeverityInfo
			}

			cveID := item.CVE
			if cveID == "" {
				cveID = fmt.Sprintf("NESSUS-%s", item.PluginID)
			}

			title := item.PluginName
			if title == "" {
				title = "Unknown Vulnerability"
			}

			component := item.SvcName
			if component == "" {
				component = "Unknown"
			}

			drafts = append(drafts, model.VulnerabilityDraft{
				Host:        host.Name,
				CVEID:       cveID,
				Title:       title,
				Description: item.Description,
				Severity:    string(severity),
				CVSSScore:   item.CVSSBaseScore,
				CVSSVector:  item.CVSSVector,
				Status:      model.StatusOpen,
				Source:      "Nessus Scanner",
				Component:   component,
				Solution:    item.Solution,
			})
		}
	}
	return drafts, nil
}
