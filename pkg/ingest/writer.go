package ingest

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/user/riskcore/pkg/model"
	"github.com/user/riskcore/pkg/store"
)

// Default CVSS per severity band when the draft carries no score
var severityCVSS = map[model.Severity]float64{
	model.SeverityCritical: 9.5,
	model.SeverityHigh:     8.0,
	model.SeverityMedium:   5.5,
	model.SeverityLow:      2.0,
}

// Writer commits draft records into the canonical store. Callers must
// serialize writes per organization; the pipeline holds an organization
// lock around every Commit call.
type Writer struct {
	store *store.Store
}

func NewWriter(st *store.Store) *Writer {
	return &Writer{store: st}
}

// CommitAssets normalizes and persists asset drafts. Drafts missing an IP
// address get a synthesized placeholder rather than being rejected, so
// vulnerabilities referencing them keep a valid target. Criticality and
// exposure are recomputed by the classifier whenever the draft carries any
// port or service signals; extracted values are never trusted verbatim.
func (w *Writer) CommitAssets(ctx context.Context, organizationID string, drafts []model.AssetDraft) ([]model.Asset, error) {
	created := make([]model.Asset, 0, len(drafts))
	for _, d := range drafts {
		asset := w.normalizeAsset(organizationID, d)
		if err := w.store.CreateAsset(ctx, &asset); err != nil {
			return created, fmt.Errorf("%w: create asset %s: %v", ErrPersistence, asset.Name, err)
		}
		created = append(created, asset)
	}
	return created, nil
}

func (w *Writer) normalizeAsset(organizationID string, d model.AssetDraft) model.Asset {
	name := d.Name
	if name == "" {
		name = d.Hostname
	}
	if name == "" {
		name = "unknown-asset"
	}
	hostname := d.Hostname
	if hostname == "" {
		hostname = name
	}

	ip := d.IPAddress
	if ip == "" {
		ip = placeholderIP()
	}

	operatingSystem := d.OperatingSystem
	if operatingSystem == "" {
		operatingSystem = "Unknown"
	}

	ports := d.Ports
	if ports == nil {
		ports = []int{}
	}
	services := d.Services
	if services == nil {
		services = []string{}
	}

	assetType := model.AssetType(d.Type)
	criticality := d.Criticality
	exposure := d.ExposureScore

	if len(ports) > 0 || len(services) > 0 {
		c := Classify(services, ports)
		criticality = c.Criticality
		exposure = c.ExposureScore
		if !assetType.Valid() {
			assetType = c.Type
		}
	} else {
		if criticality == 0 {
			criticality = 3
		}
		if exposure == 0 {
			exposure = 50
		}
		criticality = clampInt(criticality, 1, 5)
		exposure = clampFloat(exposure, 0, 100)
		if !assetType.Valid() {
			assetType = model.AssetWorkstation
		}
	}

	return model.Asset{
		OrganizationID:  organizationID,
		Name:            name,
		Type:            assetType,
		IPAddress:       ip,
		Hostname:        hostname,
		Ports:           ports,
		Services:        services,
		OperatingSystem: operatingSystem,
		Criticality:     criticality,
		ExposureScore:   exposure,
		LastScanned:     time.Now(),
	}
}

// CommitVulnerabilities resolves each draft to an asset and persists it.
// Drafts carrying a scanner host identifier must match an existing asset
// by IP or hostname (case-insensitive) or they are dropped. Drafts from
// the extraction path fall back to a substring match on the component
// against asset names, then to the organization's first asset — a
// known-imprecise heuristic kept for parity with prior behavior.
func (w *Writer) CommitVulnerabilities(ctx context.Context, organizationID string, drafts []model.VulnerabilityDraft) (created []model.Vulnerability, dropped int, err error) {
	assets, err := w.store.GetAssets(ctx, organizationID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: load assets: %v", ErrPersistence, err)
	}

	for _, d := range drafts {
		asset := resolveAsset(assets, d)
		if asset == nil {
			dropped++
			logrus.WithFields(logrus.Fields{
				"organization": organizationID,
				"host":         d.Host,
				"cve":          d.CVEID,
			}).Warn("dropping vulnerability with no matching asset")
			continue
		}

		vuln := w.normalizeVulnerability(asset.ID, d)
		if err := w.store.CreateVulnerability(ctx, &vuln); err != nil {
			return created, dropped, fmt.Errorf("%w: create vulnerability %s: %v", ErrPersistence, vuln.CVEID, err)
		}
		created = append(created, vuln)
	}
	return created, dropped, nil
}

func resolveAsset(assets []model.Asset, d model.VulnerabilityDraft) *model.Asset {
	if d.Host != "" {
		for i := range assets {
			if assets[i].IPAddress == d.Host || strings.EqualFold(assets[i].Hostname, d.Host) {
				return &assets[i]
			}
		}
		return nil
	}

	if d.Component != "" {
		component := strings.ToLower(d.Component)
		for i := range assets {
			if strings.Contains(strings.ToLower(assets[i].Name), component) {
				return &assets[i]
			}
		}
	}

	// First-asset fallback
	if len(assets) > 0 {
		return &assets[0]
	}
	return nil
}

func (w *Writer) normalizeVulnerability(assetID string, d model.VulnerabilityDraft) model.Vulnerability {
	severity := model.ParseSeverity(d.Severity)

	cvss := d.CVSSScore
	if cvss == 0 {
		cvss = severityCVSS[severity]
	}
	cvss = clampFloat(cvss, 0, 10)

	cveID := d.CVEID
	if cveID == "" {
		cveID = "AI-" + shortID()
	}

	status := d.Status
	switch status {
	case model.StatusOpen, model.StatusInProgress, model.StatusResolved:
	default:
		status = model.StatusOpen
	}

	source := d.Source
	if source == "" {
		source = "AI Analysis"
	}
	component := d.Component
	if component == "" {
		component = "Unknown"
	}
	solution := d.Solution
	if solution == "" {
		solution = "Review and remediate as needed"
	}
	title := d.Title
	if title == "" {
		title = "Unknown Vulnerability"
	}

	return model.Vulnerability{
		AssetID:        assetID,
		CVEID:          cveID,
		Title:          title,
		Description:    d.Description,
		Severity:       severity,
		CVSSScore:      cvss,
		CVSSVector:     d.CVSSVector,
		Status:         status,
		DiscoveredDate: time.Now(),
		Source:         source,
		Component:      component,
		Solution:       solution,
	}
}

// CommitPentestFindings persists finding drafts scoped to the organization
func (w *Writer) CommitPentestFindings(ctx context.Context, organizationID string, drafts []model.PentestFindingDraft) ([]model.PentestFinding, error) {
	created := make([]model.PentestFinding, 0, len(drafts))
	for _, d := range drafts {
		finding := w.normalizePentestFinding(organizationID, d)
		if err := w.store.CreatePentestFinding(ctx, &finding); err != nil {
			return created, fmt.Errorf("%w: create finding %s: %v", ErrPersistence, finding.FindingID, err)
		}
		created = append(created, finding)
	}
	return created, nil
}

func (w *Writer) normalizePentestFinding(organizationID string, d model.PentestFindingDraft) model.PentestFinding {
	severity := model.ParseSeverity(d.Severity)

	findingID := d.FindingID
	if findingID == "" {
		findingID = "AI-PT-" + shortID()
	}

	riskRating := d.RiskRating
	if riskRating == "" {
		riskRating = string(severity)
	}

	status := d.Status
	switch status {
	case model.StatusOpen, model.StatusInProgress, model.StatusResolved:
	default:
		status = model.StatusOpen
	}

	evidence := d.Evidence
	if evidence == "" {
		evidence = "Extracted from uploaded document"
	}
	tester := d.Tester
	if tester == "" {
		tester = "AI Analysis"
	}

	affected := d.AffectedAssets
	if affected == nil {
		affected = []string{}
	}

	return model.PentestFinding{
		OrganizationID: organizationID,
		FindingID:      findingID,
		Title:          d.Title,
		Description:    d.Description,
		Severity:       severity,
		RiskRating:     riskRating,
		AffectedAssets: affected,
		Evidence:       evidence,
		Recommendation: d.Recommendation,
		Status:         status,
		Tester:         tester,
		TestDate:       time.Now(),
	}
}

func placeholderIP() string {
	return fmt.Sprintf("192.168.%d.%d", rand.Intn(255), rand.Intn(255))
}

func shortID() string {
	return uuid.NewString()[:8]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
