package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
)

// Backend is an in-memory implementation of the pdfstore.BlobStore
// interface, used in tests and development. Presigned URLs are synthetic:
// a test "uploads" through one by calling Upload directly, standing in for
// the client-to-store transfer that happens outside the service in
// production.
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

type object struct {
	data        []byte
	contentType string
	disposition string
	etag        string
	updatedAt   time.Time
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// GetUploadURL returns a synthetic presigned URL for the object key.
func (b *Backend) GetUploadURL(ctx context.Context, objectKey string) (string, error) {
	return "https://uploads.memory.invalid/" + objectKey + "?expires=3600", nil
}

// Upload stores content in memory.
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params pdfstore.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	sum := md5.Sum(data)

	b.mu.Lock()
	defer b.mu.Unlock()

	contentType := params.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.objects[params.ObjectKey] = object{
		data:        data,
		contentType: contentType,
		disposition: params.ContentDisposition,
		etag:        hex.EncodeToString(sum[:]),
		updatedAt:   time.Now().UTC(),
	}
	return nil
}

// Download returns the stored content.
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, pdfstore.ErrBlobNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete removes stored content. Missing objects are ignored.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, objectKey)
	return nil
}

// GetObjectMeta retrieves metadata for a stored object.
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*pdfstore.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, pdfstore.ErrBlobNotFound
	}

	return &pdfstore.ObjectMeta{
		Key:                objectKey,
		Size:               int64(len(obj.data)),
		ContentType:        obj.contentType,
		ContentDisposition: obj.disposition,
		ETag:               obj.etag,
		UpdatedAt:          obj.updatedAt,
	}, nil
}
