// Package model defines data structures for the document platform.
package model

import (
	"time"
)

// FileType is the normalized type of an uploaded document.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDocx FileType = "docx"
	FileTypeDoc  FileType = "doc"
	FileTypeTxt  FileType = "txt"
)

// DocumentStatus tracks a document through its processing lifecycle.
type DocumentStatus string

const (
	// StatusProcessing is set on upload; a downstream worker moves the
	// document out of this state.
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the persisted record for an uploaded file.
type Document struct {
	ID         string            `json:"id" dynamodbav:"id"`
	UserID     string            `json:"user_id" dynamodbav:"user_id"`
	Filename   string            `json:"filename" dynamodbav:"filename"`
	FileType   FileType          `json:"file_type" dynamodbav:"file_type"`
	SizeBytes  int64             `json:"size_bytes" dynamodbav:"size_bytes"`
	Title      string            `json:"title" dynamodbav:"title"`
	UploadedAt time.Time         `json:"uploaded_at" dynamodbav:"uploaded_at"`
	Status     DocumentStatus    `json:"status" dynamodbav:"status"`
	StorageKey string            `json:"-" dynamodbav:"storage_key"`
	Metadata   map[string]string `json:"-" dynamodbav:"metadata,omitempty"`
}

// UploadResponse is the client-facing subset of a document record. The
// storage key and raw metadata are deliberately not echoed back.
type UploadResponse struct {
	ID         string         `json:"id"`
	Filename   string         `json:"filename"`
	FileType   FileType       `json:"type"`
	SizeBytes  int64          `json:"size"`
	Title      string         `json:"title"`
	UploadedAt time.Time      `json:"uploaded_at"`
	Status     DocumentStatus `json:"status"`
}

// WorkItem is the message enqueued for the downstream processing worker.
type WorkItem struct {
	DocumentID string   `json:"documentId"`
	UserID     string   `json:"userId"`
	S3Key      string   `json:"s3Key"`
	FileType   FileType `json:"fileType"`
	Timestamp  string   `json:"timestamp"`
}
