package pdfstore

import (
	"context"
	"io"
	"time"
)

// BlobStore defines the interface for binary storage backends.
type BlobStore interface {
	// GetUploadURL returns a time-boxed presigned URL for uploading the
	// object directly to the backend.
	GetUploadURL(ctx context.Context, objectKey string) (string, error)

	// Upload streams content into the backend.
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download streams content out of the backend. Returns ErrBlobNotFound
	// if the object does not exist.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object without fetching its
	// body. Returns ErrBlobNotFound if the object does not exist.
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// RecordStore defines the interface for key/value record persistence with
// per-key time-to-live. It backs both metadata records and rate-limit
// counters.
type RecordStore interface {
	// Get returns the value for a key, or ErrRecordNotFound if the key is
	// absent or its TTL has elapsed.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes a value. A non-positive ttl means the record never expires.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all live keys beginning with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ObjectMeta contains metadata about an object in blob storage.
type ObjectMeta struct {
	Key                string
	Size               int64
	ContentType        string
	ContentDisposition string
	ETag               string
	UpdatedAt          time.Time
}

// UploadParams contains parameters for uploading an object.
type UploadParams struct {
	ObjectKey          string
	ContentType        string
	ContentDisposition string
}

// PreviewFunc derives a short text preview from the head of a document.
// Implementations are best-effort and must never fail: on unparseable input
// they return a fixed fallback string.
type PreviewFunc func(data []byte) string
