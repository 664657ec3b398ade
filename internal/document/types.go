package document

import (
	"errors"
	"fmt"
	"time"
)

// Status tracks an RFP document through content extraction.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// ParseStatus rejects unknown status values at the storage boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUploaded, StatusProcessing, StatusProcessed, StatusFailed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: status %q", ErrValidation, s)
	}
}

// Terminal reports whether the extraction pipeline is done with the
// document. ProcessedAt is set iff Terminal.
func (s Status) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

// RFPDocument is a client-issued RFP under response. Content is filled
// by the extraction collaborator; this core never parses files itself.
type RFPDocument struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	ClientName    string     `json:"client_name"`
	FileName      string     `json:"file_name"`
	FileSize      int64      `json:"file_size"`
	FileType      string     `json:"file_type"`
	Content       string     `json:"content,omitempty"`
	Status        Status     `json:"status"`
	FailureReason string     `json:"failure_reason,omitempty"`
	Version       int64      `json:"version"`
	UploadedAt    time.Time  `json:"uploaded_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

// CompanyDocument is immutable reference material (capability decks,
// case studies, certifications). No status machine.
type CompanyDocument struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	FileType   string    `json:"file_type"`
	Category   string    `json:"category"`
	Content    string    `json:"content,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

var (
	ErrNotFound     = errors.New("document: not found")
	ErrValidation   = errors.New("document: invalid input")
	ErrInvalidState = errors.New("document: invalid state transition")
	ErrConflict     = errors.New("document: concurrent modification")
)
