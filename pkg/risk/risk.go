package risk

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user/riskcore/pkg/model"
	"github.com/user/riskcore/pkg/store"
)

// Sub-score weights for the overall score
const (
	attackSurfaceWeight = 0.30
	vulnerabilityWeight = 0.40
	pentestWeight       = 0.30
)

// pentestUntestedDefault reflects "untested" rather than "no risk"
const pentestUntestedDefault = 75.0

// Severity weights for the vulnerability and pentest sub-scores.
// Info carries no weight and is excluded from the distribution.
var severityWeights = map[model.Severity]float64{
	model.SeverityCritical: 10,
	model.SeverityHigh:     5,
	model.SeverityMedium:   2,
	model.SeverityLow:      1,
}

// Breakdown gives the raw counts behind a calculation
type Breakdown struct {
	CriticalVulns int `json:"critical_vulns"`
	HighVulns     int `json:"high_vulns"`
	MediumVulns   int `json:"medium_vulns"`
	LowVulns      int `json:"low_vulns"`
	TotalAssets   int `json:"total_assets"`
	ExposedAssets int `json:"exposed_assets"` // exposure score above 50
}

// Result is one computed risk calculation, prior to snapshotting
type Result struct {
	OverallScore       int       `json:"overall_score"`
	AttackSurfaceScore float64   `json:"attack_surface_score"`
	VulnerabilityScore float64   `json:"vulnerability_score"`
	PentestScore       float64   `json:"pentest_score"`
	Breakdown          Breakdown `json:"breakdown"`
}

// Engine computes composite risk scores from the canonical store. It is
// read-only except for the final snapshot insert and tolerates reading a
// partially-updated data set; a snapshot is point-in-time, not a
// transactional join.
type Engine struct {
	store *store.Store
}

func NewEngine(st *store.Store) *Engine {
	return &Engine{store: st}
}

// Calculate computes the three sub-scores and the weighted overall score
// for an organization. Nothing is persisted; see Save.
func (e *Engine) Calculate(ctx context.Context, organizationID string) (*Result, error) {
	assets, err := e.store.GetAssets(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	vulns, err := e.store.GetVulnerabilities(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vulnerabilities: %w", err)
	}
	findings, err := e.store.GetPentestFindings(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pentest findings: %w", err)
	}

	attackSurface := AttackSurfaceScore(assets)
	vulnerability := VulnerabilityScore(vulns)
	pentest := PentestScore(findings)

	overall := int(math.Round(
		attackSurface*attackSurfaceWeight +
			vulnerability*vulnerabilityWeight +
			pentest*pentestWeight,
	))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	result := &Result{
		OverallScore:       overall,
		AttackSurfaceScore: attackSurface,
		VulnerabilityScore: vulnerability,
		PentestScore:       pentest,
		Breakdown:          buildBreakdown(assets, vulns),
	}

	logrus.WithFields(logrus.Fields{
		"organization":   organizationID,
		"overall":        overall,
		"attack_surface": attackSurface,
		"vulnerability":  vulnerability,
		"pentest":        pentest,
	}).Debug("risk score calculated")

	return result, nil
}

// AttackSurfaceScore inverts the average asset exposure. An organization
// with zero assets scores 100, the best-case default.
func AttackSurfaceScore(assets []model.Asset) float64 {
	if len(assets) == 0 {
		return 100
	}

	total := 0.0
	for _, a := range assets {
		total += a.ExposureScore
	}
	avg := total / float64(len(assets))

	return clamp(100 - avg)
}

// VulnerabilityScore computes the weighted-severity sub-score over open
// vulnerabilities. Info-level entries are treated as absent from the
// distribution. Zero vulnerabilities yields 100.
func VulnerabilityScore(vulns []model.Vulnerability) float64 {
	severities := make([]model.Severity, len(vulns))
	for i, v := range vulns {
		severities[i] = v.Severity
	}
	return weightedSeverityScore(severities, 100)
}

// PentestScore computes the same weighted formula over pentest findings.
// Zero findings yields 75, reflecting "untested" rather than "no risk".
func PentestScore(findings []model.PentestFinding) float64 {
	severities := make([]model.Severity, len(findings))
	for i, f := range findings {
		severities[i] = f.Severity
	}
	return weightedSeverityScore(severities, pentestUntestedDefault)
}

func weightedSeverityScore(severities []model.Severity, emptyDefault float64) float64 {
	weighted := 0.0
	count := 0
	for _, s := range severities {
		w, ok := severityWeights[s]
		if !ok {
			continue // Info is excluded from the distribution
		}
		weighted += w
		count++
	}
	if count == 0 {
		return emptyDefault
	}

	maxPossible := float64(count) * 10
	return clamp(100 - (weighted/maxPossible)*100)
}

func buildBreakdown(assets []model.Asset, vulns []model.Vulnerability) Breakdown {
	b := Breakdown{TotalAssets: len(assets)}
	for _, a := range assets {
		if a.ExposureScore > 50 {
			b.ExposedAssets++
		}
	}
	for _, v := range vulns {
		switch v.Severity {
		case model.SeverityCritical:
			b.CriticalVulns++
		case model.SeverityHigh:
			b.HighVulns++
		case model.SeverityMedium:
			b.MediumVulns++
		case model.SeverityLow:
			b.LowVulns++
		}
	}
	return b
}

// Save appends a fresh immutable snapshot; prior snapshots are never touched
func (e *Engine) Save(ctx context.Context, organizationID string, result *Result) (*model.RiskScore, error) {
	snapshot := &model.RiskScore{
		OrganizationID:     organizationID,
		OverallScore:       result.OverallScore,
		AttackSurfaceScore: result.AttackSurfaceScore,
		VulnerabilityScore: result.VulnerabilityScore,
		PentestScore:       result.PentestScore,
		CalculatedDate:     time.Now(),
	}
	if err := e.store.CreateRiskScore(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save risk snapshot: %w", err)
	}
	return snapshot, nil
}

// History returns up to limit snapshots for an organization, newest first
func (e *Engine) History(ctx context.Context, organizationID string, limit int) ([]model.RiskScore, error) {
	return e.store.GetRiskScores(ctx, organizationID, limit)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
