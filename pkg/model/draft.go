package model

// Draft records are the partially-normalized output of the structured
// decoders and the AI extraction step, prior to commit. The json tags match
// the extraction service contract so a payload unmarshals straight into them.

// AssetDraft is an uncommitted asset sighting
type AssetDraft struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	IPAddress       string   `json:"ip_address"`
	Hostname        string   `json:"hostname"`
	Ports           []int    `json:"ports"`
	Services        []string `json:"services"`
	OperatingSystem string   `json:"operating_system"`
	Criticality     int      `json:"criticality"`
	ExposureScore   float64  `json:"exposure_score"`
}

// VulnerabilityDraft is an uncommitted scan finding. Host carries the raw
// host identifier from structured scanner output and is empty for drafts
// produced by the AI extraction step.
type VulnerabilityDraft struct {
	Host        string  `json:"-"`
	CVEID       string  `json:"cve_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	CVSSScore   float64 `json:"cvss_score"`
	CVSSVector  string  `json:"cvss_vector"`
	Status      string  `json:"status"`
	Source      string  `json:"source"`
	Component   string  `json:"component"`
	Solution    string  `json:"solution"`
}

// PentestFindingDraft is an uncommitted penetration-test finding
type PentestFindingDraft struct {
	FindingID      string   `json:"finding_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Severity       string   `json:"severity"`
	RiskRating     string   `json:"risk_rating"`
	AffectedAssets []string `json:"affected_assets"`
	Evidence       string   `json:"evidence"`
	Recommendation string   `json:"recommendation"`
	Status         string   `json:"status"`
	Tester         string   `json:"tester"`
}

// ParseSeverity maps a free-form severity label to the normalized scale.
// Unknown labels map to Info so untrusted input never inflates severity.
func ParseSeverity(s string) Severity {
	switch s {
	case "Critical", "critical":
		return SeverityCritical
	case "High", "high":
		return SeverityHigh
	case "Medium", "medium":
		return SeverityMedium
	case "Low", "low":
		return SeverityLow
	default:
		return SeverityInfo
	}
}
