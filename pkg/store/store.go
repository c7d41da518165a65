package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/user/riskcore/pkg/model"
)

// Store is the canonical organization-scoped store backed by gorm.
// Supported drivers are "sqlite" (default, file path or ":memory:" DSN)
// and "mysql" (standard DSN).
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Organization{},
		&model.Asset{},
		&model.Vulnerability{},
		&model.PentestFinding{},
		&model.RiskScore{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logrus.WithFields(logrus.Fields{"driver": driver}).Debug("store opened")
	return &Store{db: db}, nil
}

// EnsureOrganization creates the organization if it does not exist yet.
// Used by demo mode so a fresh install can ingest straight away.
func (s *Store) EnsureOrganization(ctx context.Context, id, name string) (*model.Organization, error) {
	var org model.Organization
	err := s.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if err == nil {
		return &org, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	org = model.Organization{ID: id, Name: name}
	if err := s.db.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// GetOrganization fetches an organization by id
func (s *Store) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	var org model.Organization
	if err := s.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateAsset inserts an asset row
func (s *Store) CreateAsset(ctx context.Context, asset *model.Asset) error {
	return s.db.WithContext(ctx).Create(asset).Error
}

// GetAssets returns all assets for an organization, newest first
func (s *Store) GetAssets(ctx context.Context, organizationID string) ([]model.Asset, error) {
	var assets []model.Asset
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&assets).Error
	return assets, err
}

// UpdateAssetExposure overwrites an asset's exposure score
func (s *Store) UpdateAssetExposure(ctx context.Context, assetID string, exposure float64) error {
	return s.db.WithContext(ctx).Model(&model.Asset{}).
		Where("id = ?", assetID).
		Updates(map[string]interface{}{"exposure_score": exposure, "updated_at": time.Now()}).Error
}

// CreateVulnerability inserts a vulnerability row
func (s *Store) CreateVulnerability(ctx context.Context, vuln *model.Vulnerability) error {
	return s.db.WithContext(ctx).Create(vuln).Error
}

// GetVulnerabilities returns all vulnerabilities attached to the
// organization's assets, highest CVSS first
func (s *Store) GetVulnerabilities(ctx context.Context, organizationID string) ([]model.Vulnerability, error) {
	var vulns []model.Vulnerability
	err := s.db.WithContext(ctx).
		Joins("JOIN assets ON assets.id = vulnerabilities.asset_id").
		Where("assets.organization_id = ?", organizationID).
		Order("vulnerabilities.cvss_score DESC").
		Find(&vulns).Error
	return vulns, err
}

// UpdateVulnerabilityStatus mutates workflow state; called by case
// management, never by the ingestion pipeline.
func (s *Store) UpdateVulnerabilityStatus(ctx context.Context, vulnID, status string, assignee *string) error {
	return s.db.WithContext(ctx).Model(&model.Vulnerability{}).
		Where("id = ?", vulnID).
		Updates(map[string]interface{}{"status": status, "assignee": assignee, "updated_at": time.Now()}).Error
}

// CreatePentestFinding inserts a pentest finding row
func (s *Store) CreatePentestFinding(ctx context.Context, finding *model.PentestFinding) error {
	return s.db.WithContext(ctx).Create(finding).Error
}

// GetPentestFindings returns all findings for an organization, newest test first
func (s *Store) GetPentestFindings(ctx context.Context, organizationID string) ([]model.PentestFinding, error) {
	var findings []model.PentestFinding
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("test_date DESC").
		Find(&findings).Error
	return findings, err
}

// CreateRiskScore appends a snapshot; snapshots are never updated
func (s *Store) CreateRiskScore(ctx context.Context, score *model.RiskScore) error {
	return s.db.WithContext(ctx).Create(score).Error
}

// GetRiskScores returns up to limit snapshots, newest first
func (s *Store) GetRiskScores(ctx context.Context, organizationID string, limit int) ([]model.RiskScore, error) {
	if limit <= 0 {
		limit = 10
	}
	var scores []model.RiskScore
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("calculated_date DESC").
		Limit(limit).
		Find(&scores).Error
	return scores, err
}
