package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	response := `{
		"assets": [{"name": "web01", "ip_address": "10.0.0.1", "ports": [80], "services": ["http"]}],
		"vulnerabilities": [{"cve_id": "CVE-2020-1234", "severity": "High", "cvss_score": 8.1}],
		"pentestFindings": [{"title": "Default credentials", "severity": "Critical"}],
		"summary": {"assetsFound": 1, "vulnerabilitiesFound": 1, "pentestFindingsFound": 1, "confidence": 90}
	}`

	p, err := ParsePayload(response)
	require.NoError(t, err)
	require.Len(t, p.Assets, 1)
	assert.Equal(t, "web01", p.Assets[0].Name)
	require.Len(t, p.Vulnerabilities, 1)
	assert.Equal(t, 8.1, p.Vulnerabilities[0].CVSSScore)
	require.Len(t, p.PentestFindings, 1)
	assert.Equal(t, 90.0, p.Summary.Confidence)
}

func TestParsePayloadWrappedInProse(t *testing.T) {
	// Models sometimes ignore the formatting instruction
	response := "Here is the extracted data:\n```json\n" +
		`{"assets": [], "vulnerabilities": [], "pentestFindings": [], "summary": {"confidence": 40}}` +
		"\n```\nLet me know if you need more."

	p, err := ParsePayload(response)
	require.NoError(t, err)
	assert.Empty(t, p.Assets)
	assert.Equal(t, 40.0, p.Summary.Confidence)
}

func TestParsePayloadMissingArraysDefaultEmpty(t *testing.T) {
	p, err := ParsePayload(`{"summary": {"confidence": 10}}`)
	require.NoError(t, err)
	assert.NotNil(t, p.Assets)
	assert.NotNil(t, p.Vulnerabilities)
	assert.NotNil(t, p.PentestFindings)
	assert.Empty(t, p.Assets)
}

func TestParsePayloadMalformedArrayDegradesToEmpty(t *testing.T) {
	p, err := ParsePayload(`{"assets": {"oops": "object not array"}, "vulnerabilities": [{"cve_id": "CVE-1"}]}`)
	require.NoError(t, err)
	assert.Empty(t, p.Assets)
	require.Len(t, p.Vulnerabilities, 1)
}

func TestParsePayloadConfidenceClamped(t *testing.T) {
	p, err := ParsePayload(`{"summary": {"confidence": 400}}`)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.Summary.Confidence)
}

func TestParsePayloadNoJSON(t *testing.T) {
	_, err := ParsePayload("I could not find any security data in this document.")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailed))
}

func TestParsePayloadInvalidJSON(t *testing.T) {
	_, err := ParsePayload(`{"assets": [`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailed))
}
