package pdfstore

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPdfNotFound indicates a document record or blob was not found
	ErrPdfNotFound = errors.New("pdf not found")

	// ErrUploadNotFound indicates a pending upload is unknown or expired
	ErrUploadNotFound = errors.New("upload not found or expired")

	// ErrUploadNotOwned indicates the caller did not initiate the upload
	ErrUploadNotOwned = errors.New("upload belongs to a different client")

	// ErrBlobNotFound indicates the blob is absent from the blob store
	ErrBlobNotFound = errors.New("file not found in storage")

	// ErrRecordNotFound indicates a record store key is absent or expired
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidContentType indicates a non-PDF upload was rejected
	ErrInvalidContentType = errors.New("only PDF files are accepted")

	// ErrMissingCredential indicates no bearer credential was presented
	ErrMissingCredential = errors.New("missing or invalid Authorization header")

	// ErrInvalidAPIKey indicates the presented credential matched no secret
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrAdminRequired indicates the operation needs the admin credential
	ErrAdminRequired = errors.New("admin authentication required")
)

// SizeLimitError indicates an upload exceeded the ceiling for its protocol.
type SizeLimitError struct {
	Size  int64
	Limit int64

	// Recommendation optionally names an alternative upload path.
	Recommendation string
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("file too large: %d bytes exceeds the %dMB limit", e.Size, e.Limit>>20)
}

// RateLimitError indicates an upload was rejected by admission control.
// RetryAfter is the full window duration in seconds, not the precise time
// to the window boundary.
type RateLimitError struct {
	Scope      string // "hourly" or "daily"
	Limit      int
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s upload limit of %d exceeded", e.Scope, e.Limit)
}

// StorageError represents a failure in an external store during an operation.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
