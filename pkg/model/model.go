package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetType categorizes an asset in the canonical inventory
type AssetType string

const (
	AssetServer      AssetType = "Server"
	AssetDatabase    AssetType = "Database"
	AssetNetwork     AssetType = "Network"
	AssetWorkstation AssetType = "Workstation"
	AssetWeb         AssetType = "Web"
	AssetApplication AssetType = "Application"
	AssetCloud       AssetType = "Cloud"
	AssetMobile      AssetType = "Mobile"
	AssetIoT         AssetType = "IoT"
)

// Valid reports whether t is one of the known asset types
func (t AssetType) Valid() bool {
	switch t {
	case AssetServer, AssetDatabase, AssetNetwork, AssetWorkstation,
		AssetWeb, AssetApplication, AssetCloud, AssetMobile, AssetIoT:
		return true
	}
	return false
}

// Severity is the normalized five-level severity scale
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityInfo     Severity = "Info"
)

// Vulnerability and finding workflow states. Ingestion only ever writes
// StatusOpen; the other states are set out-of-band by case management.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

// Organization is the root aggregate; every other entity is scoped to one
type Organization struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Name      string `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Asset is a discovered host, service or system belonging to an organization
type Asset struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID  string    `gorm:"size:36;index" json:"organization_id"`
	Name            string    `json:"name"`
	Type            AssetType `json:"type"`
	IPAddress       string    `json:"ip_address"`
	Hostname        string    `json:"hostname"`
	Ports           []int     `gorm:"serializer:json" json:"ports"`
	Services        []string  `gorm:"serializer:json" json:"services"`
	OperatingSystem string    `json:"operating_system"`
	Criticality     int       `json:"criticality"`    // 1-5
	ExposureScore   float64   `json:"exposure_score"` // 0-100
	LastScanned     time.Time `json:"last_scanned"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Vulnerability is a scan finding attached to exactly one asset
type Vulnerability struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	AssetID        string    `gorm:"size:36;index" json:"asset_id"`
	CVEID          string    `json:"cve_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Severity       Severity  `json:"severity"`
	CVSSScore      float64   `json:"cvss_score"` // 0.0-10.0
	CVSSVector     string    `json:"cvss_vector"`
	Status         string    `json:"status"`
	Assignee       *string   `json:"assignee"`
	DiscoveredDate time.Time `json:"discovered_date"`
	Source         string    `json:"source"`
	Component      string    `json:"component"`
	Solution       string    `json:"solution"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (v *Vulnerability) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// PentestFinding is scoped to the organization rather than a single asset;
// affected assets are free-text references, not foreign keys.
type PentestFinding struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string    `gorm:"size:36;index" json:"organization_id"`
	FindingID      string    `json:"finding_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Severity       Severity  `json:"severity"`
	RiskRating     string    `json:"risk_rating"`
	AffectedAssets []string  `gorm:"serializer:json" json:"affected_assets"`
	Evidence       string    `json:"evidence"`
	Recommendation string    `json:"recommendation"`
	Status         string    `json:"status"`
	Tester         string    `json:"tester"`
	TestDate       time.Time `json:"test_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (f *PentestFinding) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// RiskScore is an immutable point-in-time snapshot of the organization's
// composite risk. Snapshots are only ever inserted, never updated.
type RiskScore struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID     string    `gorm:"size:36;index" json:"organization_id"`
	OverallScore       int       `json:"overall_score"`
	AttackSurfaceScore float64   `json:"attack_surface_score"`
	VulnerabilityScore float64   `json:"vulnerability_score"`
	PentestScore       float64   `json:"pentest_score"`
	CalculatedDate     time.Time `json:"calculated_date"`
	CreatedAt          time.Time `json:"created_at"`
}

func (r *RiskScore) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
