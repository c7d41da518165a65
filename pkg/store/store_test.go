package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/riskcore/pkg/model"
)

const (
	orgA = "aaaaaaaa-0000-0000-0000-000000000001"
	orgB = "aaaaaaaa-0000-0000-0000-000000000002"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open("sqlite", filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	return st
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	require.Error(t, err)
}

func TestEnsureOrganizationIdempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first, err := st.EnsureOrganization(ctx, orgA, "Acme")
	require.NoError(t, err)
	assert.Equal(t, orgA, first.ID)

	// Second call returns the existing row, name is not overwritten
	second, err := st.EnsureOrganization(ctx, orgA, "Different Name")
	require.NoError(t, err)
	assert.Equal(t, "Acme", second.Name)

	org, err := st.GetOrganization(ctx, orgA)
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
}

func TestCreateAssetAssignsID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	_, err := st.EnsureOrganization(ctx, orgA, "Acme")
	require.NoError(t, err)

	asset := model.Asset{
		OrganizationID: orgA,
		Name:           "web01",
		Type:           model.AssetServer,
		IPAddress:      "10.0.0.1",
		Ports:          []int{80, 443},
		Services:       []string{"http", "https"},
		Criticality:    4,
		ExposureScore:  50,
	}
	require.NoError(t, st.CreateAsset(ctx, &asset))
	assert.NotEmpty(t, asset.ID)

	got, err := st.GetAssets(ctx, orgA)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []int{80, 443}, got[0].Ports)
	assert.Equal(t, []string{"http", "https"}, got[0].Services)
}

func TestAssetsAreOrganizationScoped(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	_, err := st.EnsureOrganization(ctx, orgA, "Acme")
	require.NoError(t, err)
	_, err = st.EnsureOrganization(ctx, orgB, "Globex")
	require.NoError(t, err)

	require.NoError(t, st.CreateAsset(ctx, &model.Asset{OrganizationID: orgA, Name: "a1", IPAddress: "10.0.0.1"}))
	require.NoError(t, st.CreateAsset(ctx, &model.Asset{OrganizationID: orgB, Name: "b1", IPAddress: "10.0.0.2"}))

	aAssets, err := st.GetAssets(ctx, orgA)
	require.NoError(t, err)
	require.Len(t, aAssets, 1)
	assert.Equal(t, "a1", aAssets[0].Name)
}

func TestGetVulnerabilitiesJoinsThroughAssets(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	_, err := st.EnsureOrganization(ctx, orgA, "Acme")
	require.NoError(t, err)
	_, err = st.EnsureOrganization(ctx, orgB, "Globex")
	require.NoError(t, err)

	assetA := model.Asset{OrganizationID: orgA, Name: "a1", IPAddress: "10.0.0.1"}
	require.NoError(t, st.CreateAsset(ctx, &assetA))
	assetB := model.Asset{OrganizationID: orgB, Name: "b1", IPAddress: "10.0.0.2"}
	require.NoError(t, st.CreateAsset(ctx, &assetB))

	require.NoError(t, st.CreateVulnerability(ctx, &model.Vulnerability{
		AssetID: assetA.ID, CVEID: "CVE-1", Severity: model.SeverityMedium, CVSSScore: 5.5, Status: model.StatusOpen,
	}))
	require.NoError(t, st.CreateVulnerability(ctx, &model.Vulnerability{
		AssetID: assetA.ID, CVEID: "CVE-2", Severity: model.SeverityCritical, CVSSScore: 9.8, Status: model.StatusOpen,
	}))
	require.NoError(t, st.CreateVulnerability(ctx, &model.Vulnerability{
		AssetID: assetB.ID, CVEID: "CVE-3", Severity: model.SeverityHigh, CVSSScore: 8.0, Status: model.StatusOpen,
	}))

	vulns, err := st.GetVulnerabilities(ctx, orgA)
	require.NoError(t, err)
	require.Len(t, vulns, 2)
	// Highest CVSS first
	assert.Equal(t, "CVE-2", vulns[0].CVEID)
	assert.Equal(t, "CVE-1", vulns[1].CVEID)
}

func TestUpdateVulnerabilityStatus(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	_, err := st.EnsureOrganization(ctx, orgA, "Acme")
	require.NoError(t, err)

	asset := model.Asset{OrganizationID: orgA, Name: "a1", IPAddress: "10.0.0.1"}
	require.NoError(t, st.CreateAsset(ctx, &asset))
	vuln := model.Vulnerability{AssetID: asset.ID, CVEID: "CVE-1", Severity: model.SeverityLow, CVSSScore: 2.0, Status: model.StatusOpen}
	require.NoError(t, st.CreateVulnerability(ctx, &vuln))

	assignee := "sam"
	require.NoError(t, st.UpdateVulnerabilityStatus(ctx, vuln.ID, model.StatusInProgress, &assignee))

	vulns, err := st.GetVulnerabilities(ctx, orgA)
	require.NoError(t, err)
	require.Len(t, vulns, 1)
	assert.Equal(t, model.StatusInProgress, vulns[0].Status)
	require.NotNil(t, vulns[0].Assignee)
	assert.Equal(t, "sam", *vulns[0].Assignee)
}

func TestRiskScoreOrderingAndLimit(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	_, err := st.EnsureOrganization(ctx, orgA, "Acme")
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, st.CreateRiskScore(ctx, &model.RiskScore{
			OrganizationID: orgA,
			OverallScore:   70 + i,
			CalculatedDate: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	scores, err := st.GetRiskScores(ctx, orgA, 2)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	// Newest first
	assert.Equal(t, 72, scores[0].OverallScore)
	assert.Equal(t, 71, scores[1].OverallScore)

	// Non-positive limit falls back to the default of 10
	all, err := st.GetRiskScores(ctx, orgA, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
