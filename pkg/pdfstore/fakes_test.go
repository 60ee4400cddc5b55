package pdfstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"time"
)

// fakeRecordStore is an in-memory RecordStore with an injectable clock so
// tests can cross TTL and window boundaries without sleeping.
type fakeRecordStore struct {
	data map[string]fakeEntry
	now  func() time.Time

	// When set, every call fails with this error.
	err error
}

type fakeEntry struct {
	value     []byte
	expiresAt time.Time
}

func newFakeRecordStore(now func() time.Time) *fakeRecordStore {
	return &fakeRecordStore{
		data: make(map[string]fakeEntry),
		now:  now,
	}
}

func (s *fakeRecordStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	entry, ok := s.data[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.data, key)
		return nil, ErrRecordNotFound
	}
	return entry.value, nil
}

func (s *fakeRecordStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	entry := fakeEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.data[key] = entry
	return nil
}

func (s *fakeRecordStore) Delete(_ context.Context, key string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.data, key)
	return nil
}

func (s *fakeRecordStore) List(_ context.Context, prefix string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var keys []string
	for key, entry := range s.data {
		if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// fakeBlobStore is an in-memory BlobStore.
type fakeBlobStore struct {
	objects map[string]fakeObject

	uploadErr error
}

type fakeObject struct {
	data        []byte
	contentType string
	disposition string
	etag        string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string]fakeObject)}
}

func (s *fakeBlobStore) GetUploadURL(_ context.Context, objectKey string) (string, error) {
	return "https://uploads.test/" + objectKey, nil
}

func (s *fakeBlobStore) Upload(_ context.Context, reader io.Reader, params UploadParams) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[params.ObjectKey] = fakeObject{
		data:        data,
		contentType: params.ContentType,
		disposition: params.ContentDisposition,
		etag:        "fake-etag",
	}
	return nil
}

// put places an object directly, standing in for a client's presigned upload.
func (s *fakeBlobStore) put(objectKey string, data []byte) {
	s.objects[objectKey] = fakeObject{
		data:        data,
		contentType: PdfContentType,
		etag:        "fake-etag",
	}
}

func (s *fakeBlobStore) Download(_ context.Context, objectKey string) (io.ReadCloser, error) {
	obj, ok := s.objects[objectKey]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *fakeBlobStore) Delete(_ context.Context, objectKey string) error {
	delete(s.objects, objectKey)
	return nil
}

func (s *fakeBlobStore) GetObjectMeta(_ context.Context, objectKey string) (*ObjectMeta, error) {
	obj, ok := s.objects[objectKey]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return &ObjectMeta{
		Key:                objectKey,
		Size:               int64(len(obj.data)),
		ContentType:        obj.contentType,
		ContentDisposition: obj.disposition,
		ETag:               obj.etag,
	}, nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
