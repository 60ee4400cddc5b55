package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
	"github.com/loresmith/pdfstore/pkg/pdfstore/api"
)

// stubService scripts individual operations so error mapping can be tested
// without arranging real backend failures.
type stubService struct {
	pdfstore.Service

	listErr   error
	uploadErr error
}

func (s *stubService) ListPdfs(ctx context.Context) ([]*pdfstore.PdfRecord, error) {
	return nil, s.listErr
}

func (s *stubService) UploadDirect(ctx context.Context, identity pdfstore.ClientIdentity, reader io.Reader, params pdfstore.DirectUploadParams) (*pdfstore.PdfRecord, error) {
	return nil, s.uploadErr
}

func setupStubHandler(t *testing.T, svc pdfstore.Service) *fixture {
	t.Helper()

	auth := pdfstore.NewAuthenticator(testAPIKey, testAdminKey)
	return &fixture{handler: api.NewHandler(svc, auth, api.Config{})}
}

func TestListPdfsDegradesOnStoreFailure(t *testing.T) {
	f := setupStubHandler(t, &stubService{listErr: errors.New("kv unavailable")})

	rec := f.do(t, http.MethodGet, "/pdfs", testAPIKey, nil, "")

	// Availability wins: the listing degrades to an empty 200, not a 500.
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Contains(t, body["message"], "Unable to load PDF library")
}

func TestDirectUploadTooLargeRecommendation(t *testing.T) {
	f := setupStubHandler(t, &stubService{uploadErr: &pdfstore.SizeLimitError{
		Size:           96 << 20,
		Limit:          pdfstore.MaxDirectUploadSize,
		Recommendation: "Use the /upload/request endpoint for files up to 200MB",
	}})

	content := []byte("%PDF-1.7 small body standing in for a 96MB one")
	multi, contentType := pdfMultipart(t, "big.pdf", content, nil)

	rec := f.do(t, http.MethodPost, "/upload", testAPIKey, multi, contentType)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "File too large", body["error"])
	assert.Equal(t, float64(96<<20), body["size"])
	assert.Contains(t, body["recommendation"], "/upload/request")
}

func TestStorageFailureMapsTo500(t *testing.T) {
	f := setupStubHandler(t, &stubService{uploadErr: &pdfstore.StorageError{
		Op:  "upload",
		Key: "pdfs/x.pdf",
		Err: errors.New("bucket gone"),
	}})

	content := []byte("%PDF-1.7 body")
	multi, contentType := pdfMultipart(t, "x.pdf", content, nil)

	rec := f.do(t, http.MethodPost, "/upload", testAPIKey, multi, contentType)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
