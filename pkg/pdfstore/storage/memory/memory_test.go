package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
	"github.com/loresmith/pdfstore/pkg/pdfstore/storage/memory"
)

func TestBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	err := backend.Upload(ctx, strings.NewReader("%PDF-1.7 content"), pdfstore.UploadParams{
		ObjectKey:          "pdfs/abc.pdf",
		ContentType:        pdfstore.PdfContentType,
		ContentDisposition: `attachment; filename="abc.pdf"`,
	})
	require.NoError(t, err)

	body, err := backend.Download(ctx, "pdfs/abc.pdf")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 content", string(data))

	meta, err := backend.GetObjectMeta(ctx, "pdfs/abc.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), meta.Size)
	assert.Equal(t, pdfstore.PdfContentType, meta.ContentType)
	assert.Contains(t, meta.ContentDisposition, "abc.pdf")
	assert.NotEmpty(t, meta.ETag)
}

func TestBackendMissingObject(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	_, err := backend.Download(ctx, "pdfs/missing.pdf")
	assert.ErrorIs(t, err, pdfstore.ErrBlobNotFound)

	_, err = backend.GetObjectMeta(ctx, "pdfs/missing.pdf")
	assert.ErrorIs(t, err, pdfstore.ErrBlobNotFound)
}

func TestBackendDelete(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	err := backend.Upload(ctx, strings.NewReader("data"), pdfstore.UploadParams{
		ObjectKey: "pdfs/x.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, backend.Delete(ctx, "pdfs/x.pdf"))
	_, err = backend.GetObjectMeta(ctx, "pdfs/x.pdf")
	assert.ErrorIs(t, err, pdfstore.ErrBlobNotFound)

	// Deleting again is not an error.
	assert.NoError(t, backend.Delete(ctx, "pdfs/x.pdf"))
}

func TestBackendUploadURL(t *testing.T) {
	backend := memory.New()

	url, err := backend.GetUploadURL(context.Background(), "pdfs/abc.pdf")
	require.NoError(t, err)
	assert.Contains(t, url, "pdfs/abc.pdf")
}
