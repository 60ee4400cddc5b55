package pdfstore

import (
	"time"
)

// Size ceilings for the two upload protocols. The direct path streams the
// whole body through the service process, so it carries a stricter ceiling
// than the presigned path, where the bytes travel straight from the client
// to the blob store.
const (
	// MaxUploadSize is the hard ceiling for presigned (two-phase) uploads.
	MaxUploadSize = 200 << 20 // 200MB

	// MaxDirectUploadSize is the ceiling for single-shot direct uploads.
	MaxDirectUploadSize = 95 << 20 // 95MB
)

// PdfContentType is the only media type accepted for stored documents.
const PdfContentType = "application/pdf"

// UploadURLExpiry is how long a presigned upload URL and its pending
// metadata record remain valid.
const UploadURLExpiry = time.Hour

// Client identifiers assigned by the Authenticator.
const (
	ClientIDUser  = "user"
	ClientIDAdmin = "admin"
)

// PendingStatus is the status recorded on a PendingUpload while the client
// transfers bytes directly to the blob store.
const PendingStatus = "pending"

// ClientIdentity describes the caller of a single request. It is derived
// from the presented credential on every request and never persisted.
type ClientIdentity struct {
	ID      string
	IsAdmin bool
}

// PendingUpload is the metadata recorded when a presigned upload URL is
// issued. It lives in the record store under a TTL matching the URL expiry
// and is consumed (read and deleted) when the upload is completed. If the
// client never completes, the TTL reclaims it silently.
type PendingUpload struct {
	UploadID     string    `json:"uploadId"`
	OriginalName string    `json:"originalName"`
	Filename     string    `json:"filename"`
	Size         int64     `json:"size"`
	Tags         []string  `json:"tags"`
	UploadedBy   string    `json:"uploadedBy"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// PdfRecord is the final metadata record for a stored document. Its ID
// equals the blob key suffix, so metadata and blob are always 1:1.
//
// UploadedBy is internal bookkeeping: it is stripped before a record is
// returned to any caller.
type PdfRecord struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	UploadDate   time.Time `json:"uploadDate"`
	Size         int64     `json:"size"`
	Tags         []string  `json:"tags"`
	TextPreview  string    `json:"textPreview"`
	ContentType  string    `json:"contentType"`
	UploadedBy   string    `json:"uploadedBy,omitempty"`
	ETag         string    `json:"etag,omitempty"`
}

// Stripped returns a copy of the record with internal bookkeeping fields
// removed, safe to return to callers.
func (r *PdfRecord) Stripped() *PdfRecord {
	out := *r
	out.UploadedBy = ""
	return &out
}

// ObjectKey returns the blob store key for a document ID.
func ObjectKey(id string) string {
	return "pdfs/" + id + ".pdf"
}
