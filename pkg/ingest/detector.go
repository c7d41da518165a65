package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format tags the pipeline path a file takes
type Format string

const (
	FormatNmapXML       Format = "nmap-xml"
	FormatNessusXML     Format = "nessus-xml"
	FormatOpenVASXML    Format = "openvas-xml"
	FormatNessusNative  Format = "nessus-native"
	FormatAIExtractable Format = "ai-extractable"
)

// Structured reports whether the format has a dedicated decoder
func (f Format) Structured() bool {
	return f != FormatAIExtractable
}

// sniffLimit bounds how much of an XML file is inspected for its root marker
const sniffLimit = 8 * 1024

// aiMediaTypes maps AI-extractable extensions to their media type; a media
// type starting with "image/" routes through the vision path.
var aiMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".txt":  "text/plain",
	".rtf":  "application/rtf",
	".md":   "text/markdown",
}

// DetectFormat classifies a file by extension and, for XML, by sniffing the
// root-element marker in the first few kilobytes.
func DetectFormat(name string, content []byte) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".xml":
		head := content
		if len(head) > sniffLimit {
			head = head[:sniffLimit]
		}
		if bytes.Contains(head, []byte("<nmaprun")) {
			return FormatNmapXML, nil
		}
		if bytes.Contains(head, []byte("<NessusClientData")) {
			return FormatNessusXML, nil
		}
		// Generic vulnerability-scanner XML (OpenVAS-style) fallback
		return FormatOpenVASXML, nil
	case ".nessus":
		return FormatNessusNative, nil
	}

	if _, ok := aiMediaTypes[ext]; ok {
		return FormatAIExtractable, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// MediaType returns the media type for an AI-extractable file and whether
// it should take the image (vision) extraction path.
func MediaType(name string) (mediaType string, isImage bool) {
	ext := strings.ToLower(filepath.Ext(name))
	mt := aiMediaTypes[ext]
	return mt, strings.HasPrefix(mt, "image/")
}

// SupportedExtensions lists every upload extension the detector accepts
func SupportedExtensions() []string {
	exts := []string{".xml", ".nessus"}
	for ext := range aiMediaTypes {
		exts = append(exts, ext)
	}
	return exts
}
