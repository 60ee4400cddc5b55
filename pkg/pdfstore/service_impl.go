package pdfstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Default upload quotas, overridable through configuration.
const (
	DefaultHourlyUploadLimit = 10
	DefaultDailyUploadLimit  = 50
)

// Record namespaces within the shared record store.
const (
	namespacePdfs      = "pdf"
	namespacePending   = "pending"
	namespaceRateLimit = "ratelimit"
)

// service implements the Service interface
type service struct {
	blobStore BlobStore
	pdfs      RecordStore
	pending   RecordStore
	limiter   *RateLimiter
	preview   PreviewFunc
	now       func() time.Time
	newID     func() string
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithBlobStore sets the blob storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithRecordStore sets the record store backing metadata and rate-limit
// counters. The store is partitioned into per-family namespaces internally.
func WithRecordStore(store RecordStore) Option {
	return func(s *service) {
		s.pdfs = Namespace(store, namespacePdfs)
		s.pending = Namespace(store, namespacePending)
		if s.limiter == nil {
			s.limiter = NewRateLimiter(Namespace(store, namespaceRateLimit),
				DefaultHourlyUploadLimit, DefaultDailyUploadLimit)
		}
	}
}

// WithRateLimiter sets the rate limiter, replacing the default built from
// the record store.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(s *service) {
		s.limiter = limiter
	}
}

// WithPreviewFunc sets the text preview extractor for direct uploads
func WithPreviewFunc(fn PreviewFunc) Option {
	return func(s *service) {
		s.preview = fn
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		preview: ExtractTextPreview,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}

	for _, option := range options {
		option(s)
	}

	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.pdfs == nil {
		return nil, fmt.Errorf("record store is required")
	}

	return s, nil
}

// Upload orchestration

func (s *service) RequestUpload(ctx context.Context, identity ClientIdentity, params RequestUploadParams) (*UploadTicket, error) {
	if err := s.limiter.CheckAdmission(ctx, identity.ID); err != nil {
		return nil, err
	}

	if params.Size > MaxUploadSize {
		return nil, &SizeLimitError{Size: params.Size, Limit: MaxUploadSize}
	}

	uploadID := s.newID()
	objectKey := ObjectKey(uploadID)

	presignedURL, err := s.blobStore.GetUploadURL(ctx, objectKey)
	if err != nil {
		return nil, &StorageError{Op: "presign", Key: objectKey, Err: err}
	}

	name := params.Name
	if name == "" {
		name = params.Filename
	}

	now := s.now().UTC()
	pending := &PendingUpload{
		UploadID:     uploadID,
		OriginalName: name,
		Filename:     params.Filename,
		Size:         params.Size,
		Tags:         normalizeTags(params.Tags),
		UploadedBy:   identity.ID,
		Status:       PendingStatus,
		CreatedAt:    now,
		ExpiresAt:    now.Add(UploadURLExpiry),
	}

	data, err := json.Marshal(pending)
	if err != nil {
		return nil, &StorageError{Op: "encode pending", Key: uploadID, Err: err}
	}
	if err := s.pending.Put(ctx, uploadID, data, UploadURLExpiry); err != nil {
		return nil, &StorageError{Op: "save pending", Key: uploadID, Err: err}
	}

	s.limiter.RecordUsage(ctx, identity.ID)

	return &UploadTicket{
		UploadID:     uploadID,
		PresignedURL: presignedURL,
		ExpiresIn:    int(UploadURLExpiry.Seconds()),
	}, nil
}

func (s *service) CompleteUpload(ctx context.Context, identity ClientIdentity, uploadID, etag string) (*PdfRecord, error) {
	raw, err := s.pending.Get(ctx, uploadID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "load pending", Key: uploadID, Err: err}
	}

	var pending PendingUpload
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, &StorageError{Op: "decode pending", Key: uploadID, Err: err}
	}

	// The TTL usually reclaims expired pending records, but stores apply it
	// lazily; enforce the deadline by wall clock as well.
	if !pending.ExpiresAt.IsZero() && s.now().After(pending.ExpiresAt) {
		return nil, ErrUploadNotFound
	}

	if pending.UploadedBy != identity.ID {
		return nil, ErrUploadNotOwned
	}

	objectKey := ObjectKey(uploadID)
	meta, err := s.blobStore.GetObjectMeta(ctx, objectKey)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "head", Key: objectKey, Err: err}
	}

	if etag == "" {
		etag = meta.ETag
	}

	record := &PdfRecord{
		ID:           uploadID,
		OriginalName: pending.OriginalName,
		UploadDate:   s.now().UTC(),
		Size:         meta.Size,
		Tags:         pending.Tags,
		TextPreview:  PreviewPending,
		ContentType:  PdfContentType,
		UploadedBy:   identity.ID,
		ETag:         etag,
	}

	if err := s.savePdf(ctx, record); err != nil {
		return nil, err
	}

	// Write-then-delete: a crash here leaves an orphan pending record that
	// the TTL reclaims, never a lost final record.
	if err := s.pending.Delete(ctx, uploadID); err != nil {
		slog.Warn("failed to clean up pending upload", "upload_id", uploadID, "error", err)
	}

	return record.Stripped(), nil
}

func (s *service) UploadDirect(ctx context.Context, identity ClientIdentity, reader io.Reader, params DirectUploadParams) (*PdfRecord, error) {
	if err := s.limiter.CheckAdmission(ctx, identity.ID); err != nil {
		return nil, err
	}

	if params.ContentType != PdfContentType {
		return nil, ErrInvalidContentType
	}
	if params.Size > MaxDirectUploadSize {
		return nil, &SizeLimitError{
			Size:           params.Size,
			Limit:          MaxDirectUploadSize,
			Recommendation: "Use the /upload/request endpoint for files up to 200MB",
		}
	}

	pdfID := s.newID()
	objectKey := ObjectKey(pdfID)

	filename := params.Name
	if filename == "" {
		filename = params.Filename
	}
	if filename == "" {
		filename = "pdf_" + pdfID + ".pdf"
	}

	capture := newPreviewCapture(previewScanBytes)
	err := s.blobStore.Upload(ctx, io.TeeReader(reader, capture), UploadParams{
		ObjectKey:          objectKey,
		ContentType:        PdfContentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", filename),
	})
	if err != nil {
		return nil, &StorageError{Op: "upload", Key: objectKey, Err: err}
	}

	record := &PdfRecord{
		ID:           pdfID,
		OriginalName: filename,
		UploadDate:   s.now().UTC(),
		Size:         params.Size,
		Tags:         normalizeTags(params.Tags),
		TextPreview:  s.preview(capture.Bytes()),
		ContentType:  PdfContentType,
		UploadedBy:   identity.ID,
	}

	if err := s.savePdf(ctx, record); err != nil {
		return nil, err
	}

	s.limiter.RecordUsage(ctx, identity.ID)

	return record.Stripped(), nil
}

// Library operations

func (s *service) ListPdfs(ctx context.Context) ([]*PdfRecord, error) {
	ids, err := s.pdfs.List(ctx, "")
	if err != nil {
		return nil, &StorageError{Op: "list", Key: namespacePdfs, Err: err}
	}

	records := make([]*PdfRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.loadPdf(ctx, id)
		if err != nil {
			// A single unreadable record must not take down the listing.
			slog.Warn("skipping unreadable pdf record", "pdf_id", id, "error", err)
			continue
		}
		records = append(records, record.Stripped())
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UploadDate.After(records[j].UploadDate)
	})

	return records, nil
}

func (s *service) GetPdf(ctx context.Context, id string) (io.ReadCloser, *ObjectMeta, error) {
	objectKey := ObjectKey(id)

	meta, err := s.blobStore.GetObjectMeta(ctx, objectKey)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, nil, ErrPdfNotFound
	}
	if err != nil {
		return nil, nil, &StorageError{Op: "head", Key: objectKey, Err: err}
	}

	body, err := s.blobStore.Download(ctx, objectKey)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, nil, ErrPdfNotFound
	}
	if err != nil {
		return nil, nil, &StorageError{Op: "download", Key: objectKey, Err: err}
	}

	return body, meta, nil
}

func (s *service) GetPdfMetadata(ctx context.Context, id string) (*PdfRecord, error) {
	record, err := s.loadPdf(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, ErrPdfNotFound
	}
	if err != nil {
		return nil, err
	}
	return record.Stripped(), nil
}

func (s *service) DeletePdf(ctx context.Context, id string) error {
	objectKey := ObjectKey(id)

	// Blob first, then metadata. The blob store does not report whether the
	// object existed.
	if err := s.blobStore.Delete(ctx, objectKey); err != nil {
		return &StorageError{Op: "delete blob", Key: objectKey, Err: err}
	}
	if err := s.pdfs.Delete(ctx, id); err != nil {
		return &StorageError{Op: "delete record", Key: id, Err: err}
	}
	return nil
}

// Helpers

func (s *service) savePdf(ctx context.Context, record *PdfRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return &StorageError{Op: "encode record", Key: record.ID, Err: err}
	}
	if err := s.pdfs.Put(ctx, record.ID, data, 0); err != nil {
		return &StorageError{Op: "save record", Key: record.ID, Err: err}
	}
	return nil
}

func (s *service) loadPdf(ctx context.Context, id string) (*PdfRecord, error) {
	raw, err := s.pdfs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var record PdfRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("corrupt pdf record %s: %w", id, err)
	}
	return &record, nil
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// previewCapture retains the first limit bytes written through it, feeding
// the preview extractor without buffering the whole upload.
type previewCapture struct {
	buf   []byte
	limit int
}

func newPreviewCapture(limit int) *previewCapture {
	return &previewCapture{limit: limit}
}

func (c *previewCapture) Write(p []byte) (int, error) {
	if remaining := c.limit - len(c.buf); remaining > 0 {
		if len(p) > remaining {
			c.buf = append(c.buf, p[:remaining]...)
		} else {
			c.buf = append(c.buf, p...)
		}
	}
	return len(p), nil
}

func (c *previewCapture) Bytes() []byte {
	return c.buf
}
