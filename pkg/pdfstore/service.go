package pdfstore

import (
	"context"
	"io"
)

// Service defines the main interface for the pdfstore library: upload
// orchestration plus read/list/delete over the stored library.
//
// Every record-returning operation strips internal bookkeeping fields
// before returning.
type Service interface {
	// RequestUpload starts a two-phase upload: it validates the declared
	// size, persists a PendingUpload under a TTL, records rate-limit usage,
	// and returns a presigned URL the caller uploads against directly.
	RequestUpload(ctx context.Context, identity ClientIdentity, params RequestUploadParams) (*UploadTicket, error)

	// CompleteUpload promotes a PendingUpload to a final PdfRecord after
	// verifying ownership and that the blob actually arrived.
	CompleteUpload(ctx context.Context, identity ClientIdentity, uploadID, etag string) (*PdfRecord, error)

	// UploadDirect performs a single-shot upload: the bytes stream through
	// the service into the blob store and the final record is written
	// immediately, with no pending stage.
	UploadDirect(ctx context.Context, identity ClientIdentity, reader io.Reader, params DirectUploadParams) (*PdfRecord, error)

	// ListPdfs returns all final records. Individual corrupt records are
	// skipped rather than failing the listing.
	ListPdfs(ctx context.Context) ([]*PdfRecord, error)

	// GetPdf streams a stored document along with its blob metadata.
	GetPdf(ctx context.Context, id string) (io.ReadCloser, *ObjectMeta, error)

	// GetPdfMetadata returns a single final record.
	GetPdfMetadata(ctx context.Context, id string) (*PdfRecord, error)

	// DeletePdf removes the blob and then the metadata record. A missing
	// blob is not distinguished from a successful blob delete.
	DeletePdf(ctx context.Context, id string) error
}
