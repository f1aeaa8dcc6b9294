package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/docuchat-ai/document-platform/internal/apperr"
	"github.com/docuchat-ai/document-platform/internal/model"
	"github.com/docuchat-ai/document-platform/internal/queue"
	"github.com/docuchat-ai/document-platform/internal/storage/blob"
	"github.com/docuchat-ai/document-platform/internal/storage/record"
	"github.com/docuchat-ai/document-platform/pkg/logger"
	"github.com/docuchat-ai/document-platform/pkg/metrics"
)

// extensionTypes maps file extensions to normalized document types.
var extensionTypes = map[string]model.FileType{
	".pdf":  model.FileTypePDF,
	".doc":  model.FileTypeDoc,
	".docx": model.FileTypeDocx,
	".txt":  model.FileTypeTxt,
}

// contentTypeTypes maps MIME types to normalized document types.
var contentTypeTypes = map[string]model.FileType{
	"application/pdf":    model.FileTypePDF,
	"application/msword": model.FileTypeDoc,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": model.FileTypeDocx,
	"text/plain": model.FileTypeTxt,
}

// UploadConfig holds the tunables for the upload pipeline.
type UploadConfig struct {
	MaxUploadBytes   int64
	AllowedMIMETypes []string
	// KeyPrefix is prepended to every storage key. The full key, prefix
	// included, is what gets persisted and enqueued, so downstream consumers
	// can address the object directly.
	KeyPrefix string
}

// UploadInput describes one incoming file.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	// RawMetadata is the optional JSON-encoded metadata form field.
	RawMetadata string
}

// UploadResult is the outcome of a successful upload. Warnings carry
// swallowed soft failures (currently only metadata parse errors) so callers
// can assert degraded behavior.
type UploadResult struct {
	Document model.UploadResponse
	Warnings []string
}

// UploadService runs the upload pipeline: validate, store the blob, persist
// the record, enqueue the processing job. The three writes are not
// transactional; a failure partway through can leave an orphaned blob or an
// unqueued record, which is accepted best-effort semantics.
type UploadService struct {
	blobs     blob.Store
	documents record.DocumentStore
	jobs      queue.Queue
	cfg       UploadConfig
	logger    *logger.Logger
}

// NewUploadService creates a new upload service.
func NewUploadService(
	blobs blob.Store,
	documents record.DocumentStore,
	jobs queue.Queue,
	cfg UploadConfig,
	log *logger.Logger,
) *UploadService {
	return &UploadService{
		blobs:     blobs,
		documents: documents,
		jobs:      jobs,
		cfg:       cfg,
		logger:    log,
	}
}

// Upload validates and persists one document for the given user.
func (s *UploadService) Upload(ctx context.Context, userID string, in UploadInput) (*UploadResult, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}
	if in.Filename == "" {
		return nil, apperr.BadRequest("no file provided")
	}
	if s.cfg.MaxUploadBytes > 0 && in.Size > s.cfg.MaxUploadBytes {
		return nil, apperr.PayloadTooLarge("file exceeds maximum size of %d bytes", s.cfg.MaxUploadBytes)
	}

	fileType, ok := s.resolveFileType(in.Filename, in.ContentType)
	if !ok {
		return nil, apperr.BadRequest("file type not allowed; accepted types are pdf, doc, docx and txt")
	}

	var warnings []string
	custom, warn := parseMetadata(in.RawMetadata)
	if warn != "" {
		warnings = append(warnings, warn)
		s.logger.Warn("ignoring unparseable upload metadata",
			zap.String("user_id", userID),
			zap.String("reason", warn),
		)
		metrics.RecordDegraded("upload_metadata")
	}

	docID := NewDocumentID()
	now := time.Now().UTC()

	// The key embeds user, document id and filename so re-uploads under a
	// fresh id never collide with prior objects.
	storageKey := path.Join(s.cfg.KeyPrefix, userID, docID, in.Filename)

	blobMeta := map[string]string{
		"user-id":     userID,
		"document-id": docID,
		"filename":    in.Filename,
	}
	for k, v := range custom {
		blobMeta[k] = v
	}

	if err := s.blobs.Put(ctx, blob.PutInput{
		Key:         storageKey,
		Body:        in.Body,
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata:    blobMeta,
	}); err != nil {
		metrics.UploadsTotal.WithLabelValues(string(fileType), "error").Inc()
		return nil, fmt.Errorf("store blob: %w", err)
	}

	title := in.Filename
	if t := custom["title"]; t != "" {
		title = t
	}

	doc := &model.Document{
		ID:         docID,
		UserID:     userID,
		Filename:   in.Filename,
		FileType:   fileType,
		SizeBytes:  in.Size,
		Title:      title,
		UploadedAt: now,
		Status:     model.StatusProcessing,
		StorageKey: storageKey,
		Metadata:   custom,
	}
	if err := s.documents.PutDocument(ctx, doc); err != nil {
		metrics.UploadsTotal.WithLabelValues(string(fileType), "error").Inc()
		return nil, fmt.Errorf("persist document record: %w", err)
	}

	if err := s.jobs.Enqueue(ctx, &model.WorkItem{
		DocumentID: docID,
		UserID:     userID,
		S3Key:      storageKey,
		FileType:   fileType,
		Timestamp:  now.Format(time.RFC3339),
	}); err != nil {
		metrics.UploadsTotal.WithLabelValues(string(fileType), "error").Inc()
		return nil, fmt.Errorf("enqueue processing job: %w", err)
	}

	s.logger.Info("document uploaded",
		zap.String("user_id", userID),
		zap.String("document_id", docID),
		zap.String("file_type", string(fileType)),
		zap.Int64("size_bytes", in.Size),
	)
	metrics.UploadsTotal.WithLabelValues(string(fileType), "ok").Inc()
	metrics.UploadBytes.Observe(float64(in.Size))

	return &UploadResult{
		Document: model.UploadResponse{
			ID:         doc.ID,
			Filename:   doc.Filename,
			FileType:   doc.FileType,
			SizeBytes:  doc.SizeBytes,
			Title:      doc.Title,
			UploadedAt: doc.UploadedAt,
			Status:     doc.Status,
		},
		Warnings: warnings,
	}, nil
}

// resolveFileType normalizes the document type from the content type or, as a
// fallback, the file extension. Both the MIME allow-list and the extension
// table gate what is accepted.
func (s *UploadService) resolveFileType(filename, contentType string) (model.FileType, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	if ft, ok := contentTypeTypes[ct]; ok && s.mimeAllowed(ct) {
		return ft, true
	}

	ext := strings.ToLower(path.Ext(filename))
	if ft, ok := extensionTypes[ext]; ok {
		return ft, true
	}

	return "", false
}

func (s *UploadService) mimeAllowed(contentType string) bool {
	if len(s.cfg.AllowedMIMETypes) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedMIMETypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// parseMetadata decodes the optional JSON metadata field. Values that are not
// strings are re-encoded as JSON so every stored metadata value is a string.
// A parse failure is reported as a warning, never as a request failure.
func parseMetadata(raw string) (map[string]string, string) {
	if strings.TrimSpace(raw) == "" {
		return nil, ""
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Sprintf("invalid metadata JSON: %v", err)
	}

	out := make(map[string]string, len(decoded))
	for k, v := range decoded {
		switch val := v.(type) {
		case string:
			out[k] = val
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				continue
			}
			out[k] = string(encoded)
		}
	}
	return out, ""
}
