package pdfstore

import (
	"strings"
)

// Fallback preview strings.
const (
	// PreviewPending is recorded for presigned uploads, whose bytes never
	// pass through the service.
	PreviewPending = "Large PDF - text extraction pending"

	previewUnreadable = "PDF content detected but text extraction requires additional processing"
)

const (
	previewScanBytes = 1000
	previewMaxLen    = 200
)

// ExtractTextPreview derives a low-fidelity text preview from the head of a
// PDF by keeping whatever printable ASCII it finds there. It is deliberately
// crude: real text extraction would need a PDF parser, and this preview is
// only a hint for listings. It never fails.
func ExtractTextPreview(data []byte) string {
	if len(data) > previewScanBytes {
		data = data[:previewScanBytes]
	}

	var b strings.Builder
	for _, c := range data {
		if c >= 0x20 && c <= 0x7e {
			b.WriteByte(c)
		}
	}

	text := strings.TrimSpace(b.String())
	if len(text) <= 10 {
		return previewUnreadable
	}
	if len(text) > previewMaxLen {
		return text[:previewMaxLen] + "..."
	}
	return text
}
