package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormatNmap(t *testing.T) {
	format, err := DetectFormat("scan.xml", []byte(`<?xml version="1.0"?><nmaprun scanner="nmap"></nmaprun>`))
	require.NoError(t, err)
	assert.Equal(t, FormatNmapXML, format)
}

func TestDetectFormatNessusXML(t *testing.T) {
	format, err := DetectFormat("export.xml", []byte(`<NessusClientData_v2></NessusClientData_v2>`))
	require.NoError(t, err)
	assert.Equal(t, FormatNessusXML, format)
}

func TestDetectFormatOpenVASFallback(t *testing.T) {
	format, err := DetectFormat("report.xml", []byte(`<report><results></results></report>`))
	require.NoError(t, err)
	assert.Equal(t, FormatOpenVASXML, format)
}

func TestDetectFormatNessusNative(t *testing.T) {
	// .nessus is always the native scanner format, regardless of content
	format, err := DetectFormat("scan.nessus", []byte("anything"))
	require.NoError(t, err)
	assert.Equal(t, FormatNessusNative, format)
}

func TestDetectFormatAIExtractable(t *testing.T) {
	for _, name := range []string{"report.docx", "diagram.PNG", "findings.pdf", "notes.md", "inventory.csv"} {
		format, err := DetectFormat(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, FormatAIExtractable, format, name)
		assert.False(t, format.Structured())
	}
}

func TestDetectFormatUnsupported(t *testing.T) {
	_, err := DetectFormat("malware.exe", nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = DetectFormat("noextension", nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestMediaType(t *testing.T) {
	mt, isImage := MediaType("shot.png")
	assert.Equal(t, "image/png", mt)
	assert.True(t, isImage)

	mt, isImage = MediaType("report.pdf")
	assert.Equal(t, "application/pdf", mt)
	assert.False(t, isImage)
}
