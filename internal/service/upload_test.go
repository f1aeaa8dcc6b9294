package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat-ai/document-platform/internal/apperr"
	"github.com/docuchat-ai/document-platform/internal/model"
	"github.com/docuchat-ai/document-platform/internal/storage/blob"
	"github.com/docuchat-ai/document-platform/internal/storage/record"
	"github.com/docuchat-ai/document-platform/pkg/logger"
)

type fakeBlobStore struct {
	puts    []blob.PutInput
	bodies  [][]byte
	failPut error
}

func (f *fakeBlobStore) Put(ctx context.Context, in blob.PutInput) error {
	if f.failPut != nil {
		return f.failPut
	}
	data, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, data)
	return nil
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

type fakeQueue struct {
	items   []*model.WorkItem
	failing error
}

func (f *fakeQueue) Enqueue(ctx context.Context, item *model.WorkItem) error {
	if f.failing != nil {
		return f.failing
	}
	f.items = append(f.items, item)
	return nil
}

func newUploadFixture(t *testing.T) (*UploadService, *fakeBlobStore, *record.MemoryStore, *fakeQueue) {
	t.Helper()
	blobs := &fakeBlobStore{}
	records := record.NewMemoryStore()
	jobs := &fakeQueue{}
	svc := NewUploadService(blobs, records, jobs, UploadConfig{
		MaxUploadBytes: 25 << 20,
		KeyPrefix:      "uploads",
		AllowedMIMETypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
		},
	}, logger.NewNop())
	return svc, blobs, records, jobs
}

func pdfInput(size int) UploadInput {
	return UploadInput{
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Size:        int64(size),
		Body:        bytes.NewReader(bytes.Repeat([]byte("a"), size)),
	}
}

func TestUploadSuccess(t *testing.T) {
	svc, blobs, records, jobs := newUploadFixture(t)

	result, err := svc.Upload(context.Background(), "u1", pdfInput(1000))
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "report.pdf", doc.Filename)
	assert.Equal(t, model.FileTypePDF, doc.FileType)
	assert.Equal(t, int64(1000), doc.SizeBytes)
	assert.Equal(t, "report.pdf", doc.Title)
	assert.Equal(t, model.StatusProcessing, doc.Status)
	assert.Regexp(t, `^doc_\d+_[a-z0-9]{8}$`, doc.ID)
	assert.Empty(t, result.Warnings)

	// Blob written with content type and identifying metadata.
	require.Len(t, blobs.puts, 1)
	put := blobs.puts[0]
	assert.Equal(t, "application/pdf", put.ContentType)
	assert.Equal(t, "u1", put.Metadata["user-id"])
	assert.Equal(t, doc.ID, put.Metadata["document-id"])
	assert.Equal(t, "report.pdf", put.Metadata["filename"])
	assert.Contains(t, put.Key, "u1/")
	assert.Contains(t, put.Key, doc.ID)
	assert.True(t, strings.HasSuffix(put.Key, "report.pdf"))

	// Record persisted.
	stored, err := records.GetDocument(context.Background(), "u1", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, put.Key, stored.StorageKey)

	// Work item enqueued.
	require.Len(t, jobs.items, 1)
	item := jobs.items[0]
	assert.Equal(t, doc.ID, item.DocumentID)
	assert.Equal(t, "u1", item.UserID)
	assert.Equal(t, put.Key, item.S3Key)
	assert.Equal(t, model.FileTypePDF, item.FileType)
	assert.NotEmpty(t, item.Timestamp)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, blobs, _, jobs := newUploadFixture(t)

	in := pdfInput(10)
	in.Size = (25 << 20) + 1

	_, err := svc.Upload(context.Background(), "u1", in)
	require.Error(t, err)
	ce, ok := apperr.AsClientError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, ce.Status)

	assert.Empty(t, blobs.puts)
	assert.Empty(t, jobs.items)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	svc, blobs, _, jobs := newUploadFixture(t)

	in := UploadInput{
		Filename:    "malware.exe",
		ContentType: "application/octet-stream",
		Size:        100,
		Body:        bytes.NewReader(make([]byte, 100)),
	}

	_, err := svc.Upload(context.Background(), "u1", in)
	require.Error(t, err)
	ce, ok := apperr.AsClientError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ce.Status)

	assert.Empty(t, blobs.puts)
	assert.Empty(t, jobs.items)
}

func TestUploadAcceptsByExtensionWhenContentTypeGeneric(t *testing.T) {
	svc, _, _, _ := newUploadFixture(t)

	in := UploadInput{
		Filename:    "notes.txt",
		ContentType: "application/octet-stream",
		Size:        10,
		Body:        strings.NewReader("0123456789"),
	}

	result, err := svc.Upload(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, model.FileTypeTxt, result.Document.FileType)
}

func TestUploadRequiresUser(t *testing.T) {
	svc, blobs, _, jobs := newUploadFixture(t)

	_, err := svc.Upload(context.Background(), "", pdfInput(10))
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Empty(t, blobs.puts)
	assert.Empty(t, jobs.items)
}

func TestUploadMetadataTitleOverride(t *testing.T) {
	svc, blobs, _, _ := newUploadFixture(t)

	in := pdfInput(100)
	in.RawMetadata = `{"title": "Q1 Report", "pages": 42}`

	result, err := svc.Upload(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, "Q1 Report", result.Document.Title)
	assert.Empty(t, result.Warnings)

	// Non-string metadata values are stringified on the blob.
	require.Len(t, blobs.puts, 1)
	assert.Equal(t, "Q1 Report", blobs.puts[0].Metadata["title"])
	assert.Equal(t, "42", blobs.puts[0].Metadata["pages"])
}

func TestUploadInvalidMetadataIsSwallowed(t *testing.T) {
	svc, _, _, _ := newUploadFixture(t)

	in := pdfInput(100)
	in.RawMetadata = `{not valid json`

	result, err := svc.Upload(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", result.Document.Title)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "invalid metadata JSON")
}

func TestUploadKeyIsIdenticalAcrossBlobRecordAndWorkItem(t *testing.T) {
	svc, blobs, records, jobs := newUploadFixture(t)

	result, err := svc.Upload(context.Background(), "u1", pdfInput(100))
	require.NoError(t, err)

	require.Len(t, blobs.puts, 1)
	blobKey := blobs.puts[0].Key
	assert.True(t, strings.HasPrefix(blobKey, "uploads/u1/"), "key %q missing prefix", blobKey)

	// The record and the work item must address the physical object: a
	// downstream worker resolves these keys against raw storage.
	stored, err := records.GetDocument(context.Background(), "u1", result.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, blobKey, stored.StorageKey)

	require.Len(t, jobs.items, 1)
	assert.Equal(t, blobKey, jobs.items[0].S3Key)
}

func TestUploadTwiceYieldsDistinctIDsAndKeys(t *testing.T) {
	svc, blobs, _, _ := newUploadFixture(t)

	first, err := svc.Upload(context.Background(), "u1", pdfInput(1000))
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), "u1", pdfInput(1000))
	require.NoError(t, err)

	assert.NotEqual(t, first.Document.ID, second.Document.ID)
	require.Len(t, blobs.puts, 2)
	assert.NotEqual(t, blobs.puts[0].Key, blobs.puts[1].Key)
}

func TestUploadBlobFailureAbortsPipeline(t *testing.T) {
	svc, blobs, records, jobs := newUploadFixture(t)
	blobs.failPut = errors.New("bucket unavailable")

	_, err := svc.Upload(context.Background(), "u1", pdfInput(100))
	require.Error(t, err)
	_, ok := apperr.AsClientError(err)
	assert.False(t, ok)

	// Nothing downstream of the failed step happened.
	_, getErr := records.GetDocument(context.Background(), "u1", "any")
	require.ErrorIs(t, getErr, apperr.ErrNotFound)
	assert.Empty(t, jobs.items)
}

func TestUploadQueueFailureSurfacesError(t *testing.T) {
	svc, _, _, jobs := newUploadFixture(t)
	jobs.failing = errors.New("queue down")

	_, err := svc.Upload(context.Background(), "u1", pdfInput(100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enqueue processing job")
}
