package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat-ai/document-platform/internal/middleware"
	"github.com/docuchat-ai/document-platform/internal/model"
	"github.com/docuchat-ai/document-platform/internal/queue"
	"github.com/docuchat-ai/document-platform/internal/service"
	"github.com/docuchat-ai/document-platform/internal/storage/blob"
	"github.com/docuchat-ai/document-platform/internal/storage/record"
	"github.com/docuchat-ai/document-platform/pkg/logger"
)

type memBlobStore struct {
	objects map[string][]byte
}

func (m *memBlobStore) Put(ctx context.Context, in blob.PutInput) error {
	data, _ := io.ReadAll(in.Body)
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[in.Key] = data
	return nil
}

func (m *memBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.objects[key])), nil
}

type memQueue struct {
	items []*model.WorkItem
}

func (m *memQueue) Enqueue(ctx context.Context, item *model.WorkItem) error {
	m.items = append(m.items, item)
	return nil
}

var _ queue.Queue = (*memQueue)(nil)

func newDocumentHandler(t *testing.T) (*DocumentHandler, *memBlobStore, *memQueue) {
	t.Helper()
	blobs := &memBlobStore{}
	jobs := &memQueue{}
	svc := service.NewUploadService(blobs, record.NewMemoryStore(), jobs, service.UploadConfig{
		MaxUploadBytes:   25 << 20,
		AllowedMIMETypes: []string{"application/pdf", "text/plain"},
	}, logger.NewNop())
	return NewDocumentHandler(svc, 25<<20, logger.NewNop()), blobs, jobs
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte, metadata string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if metadata != "" {
		require.NoError(t, w.WriteField("metadata", metadata))
	}

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func asUser(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestUploadHandlerSuccess(t *testing.T) {
	h, blobs, jobs := newDocumentHandler(t)

	req := asUser(multipartUpload(t, "report.pdf", "application/pdf", bytes.Repeat([]byte("x"), 1000), ""), "u1")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp model.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "report.pdf", resp.Filename)
	assert.Equal(t, model.FileTypePDF, resp.FileType)
	assert.Equal(t, int64(1000), resp.SizeBytes)
	assert.Equal(t, model.StatusProcessing, resp.Status)
	assert.Regexp(t, `^doc_\d+_[a-z0-9]{8}$`, resp.ID)

	assert.Len(t, blobs.objects, 1)
	assert.Len(t, jobs.items, 1)
}

func TestUploadHandlerTitleFromMetadata(t *testing.T) {
	h, _, _ := newDocumentHandler(t)

	req := asUser(multipartUpload(t, "report.pdf", "application/pdf", []byte("data"), `{"title": "Q1 Report"}`), "u1")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp model.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Q1 Report", resp.Title)
}

func TestUploadHandlerInvalidMetadataStillSucceeds(t *testing.T) {
	h, _, _ := newDocumentHandler(t)

	req := asUser(multipartUpload(t, "report.pdf", "application/pdf", []byte("data"), `{broken`), "u1")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp model.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "report.pdf", resp.Title)
}

func TestUploadHandlerUnauthorized(t *testing.T) {
	h, blobs, jobs := newDocumentHandler(t)

	req := multipartUpload(t, "report.pdf", "application/pdf", []byte("data"), "")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, blobs.objects)
	assert.Empty(t, jobs.items)
}

func TestUploadHandlerNoFile(t *testing.T) {
	h, _, _ := newDocumentHandler(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("metadata", "{}"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, asUser(req, "u1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandlerDisallowedType(t *testing.T) {
	h, blobs, _ := newDocumentHandler(t)

	req := asUser(multipartUpload(t, "virus.exe", "application/octet-stream", []byte("data"), ""), "u1")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, blobs.objects)
}

func TestUploadHandlerContentLengthTooLarge(t *testing.T) {
	h, blobs, _ := newDocumentHandler(t)

	req := asUser(multipartUpload(t, "report.pdf", "application/pdf", []byte("data"), ""), "u1")
	req.ContentLength = 30 << 20

	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, blobs.objects)
}

func TestUploadHandlerOnlyFirstFileConsidered(t *testing.T) {
	h, blobs, _ := newDocumentHandler(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for i, name := range []string{"first.pdf", "second.pdf"} {
		hdr := map[string][]string{
			"Content-Disposition": {`form-data; name="file"; filename="` + name + `"`},
			"Content-Type":        {"application/pdf"},
		}
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte{byte(i)})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, asUser(req, "u1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp model.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "first.pdf", resp.Filename)
	assert.Len(t, blobs.objects, 1)
}
