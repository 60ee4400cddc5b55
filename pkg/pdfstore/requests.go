package pdfstore

// Request/response DTOs

// RequestUploadParams contains parameters for requesting a presigned upload.
type RequestUploadParams struct {
	Filename string
	Size     int64

	// Name optionally overrides Filename as the stored display name.
	Name string
	Tags []string
}

// UploadTicket is returned when a presigned upload is granted. The caller
// performs the binary transfer directly against the blob store with the
// presigned URL, then completes the upload by ID.
type UploadTicket struct {
	UploadID     string
	PresignedURL string
	ExpiresIn    int
}

// DirectUploadParams contains parameters for a single-shot upload whose
// bytes stream through the service itself.
type DirectUploadParams struct {
	Filename    string
	ContentType string
	Size        int64
	Name        string
	Tags        []string
}
