// Package handler provides HTTP handlers for the API.
package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/docuchat-ai/document-platform/internal/middleware"
	"github.com/docuchat-ai/document-platform/internal/service"
	"github.com/docuchat-ai/document-platform/pkg/logger"
)

// multipartOverhead is slack on top of the configured maximum for multipart
// boundaries and form fields when capping the request body.
const multipartOverhead = 1 << 20

// DocumentHandler handles document upload endpoints.
type DocumentHandler struct {
	uploads        *service.UploadService
	maxUploadBytes int64
	logger         *logger.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(uploads *service.UploadService, maxUploadBytes int64, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		uploads:        uploads,
		maxUploadBytes: maxUploadBytes,
		logger:         log,
	}
}

// Upload handles POST /api/v1/documents. The payload is multipart form data;
// only the first file part is considered. An optional "metadata" field
// carries a JSON-encoded string map.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if r.ContentLength > h.maxUploadBytes+multipartOverhead {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}

	var (
		in       service.UploadInput
		haveFile bool
		rawMeta  string
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed multipart payload")
			return
		}

		if part.FileName() == "" {
			if part.FormName() == "metadata" {
				data, _ := io.ReadAll(io.LimitReader(part, 64<<10))
				rawMeta = string(data)
			}
			part.Close()
			continue
		}

		if haveFile {
			// Only the first file part is considered.
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, h.maxUploadBytes+1))
		part.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read file part")
			return
		}
		if int64(len(data)) > h.maxUploadBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}

		in = service.UploadInput{
			Filename:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Size:        int64(len(data)),
			Body:        bytes.NewReader(data),
		}
		haveFile = true
	}

	if !haveFile {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	in.RawMetadata = rawMeta

	result, err := h.uploads.Upload(ctx, userID, in)
	if err != nil {
		h.logger.Error("upload failed",
			zap.String("user_id", userID),
			zap.String("filename", in.Filename),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result.Document)
}
