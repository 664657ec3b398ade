package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rfpdesk.io/internal/ids"
	"rfpdesk.io/internal/stream"
)

var defaultFileTypes = []string{"pdf", "doc", "docx", "txt", "md"}

var defaultCategories = []string{"capability", "case-study", "certification", "other"}

// Service enforces document lifecycle rules on top of a Store.
type Service struct {
	store      Store
	now        func() time.Time
	events     *stream.Hub
	fileTypes  map[string]struct{}
	categories map[string]struct{}
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithEvents publishes lifecycle events to the hub.
func WithEvents(hub *stream.Hub) ServiceOption {
	return func(s *Service) { s.events = hub }
}

// WithFileTypes overrides the recognized upload file types.
func WithFileTypes(types []string) ServiceOption {
	return func(s *Service) { s.fileTypes = toSet(types) }
}

// WithCategories overrides the company document category allow-list.
// An empty list disables the check.
func WithCategories(categories []string) ServiceOption {
	return func(s *Service) { s.categories = toSet(categories) }
}

// NewService constructs a Service with default file type and category
// allow-lists.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		now:        time.Now,
		fileTypes:  toSet(defaultFileTypes),
		categories: toSet(defaultCategories),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it != "" {
			set[it] = struct{}{}
		}
	}
	return set
}

// CreateRFPInput is the upload metadata for an RFP document.
type CreateRFPInput struct {
	Title      string
	ClientName string
	FileName   string
	FileSize   int64
	FileType   string
}

// CreateRFPDocument records a fresh upload with status=uploaded.
func (s *Service) CreateRFPDocument(ctx context.Context, in CreateRFPInput) (*RFPDocument, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrValidation)
	}
	if in.FileSize <= 0 {
		return nil, fmt.Errorf("%w: file size must be > 0", ErrValidation)
	}
	fileType := strings.ToLower(strings.TrimSpace(in.FileType))
	if _, ok := s.fileTypes[fileType]; !ok {
		return nil, fmt.Errorf("%w: unrecognized file type %q", ErrValidation, in.FileType)
	}

	doc := &RFPDocument{
		ID:         ids.New(),
		Title:      strings.TrimSpace(in.Title),
		ClientName: strings.TrimSpace(in.ClientName),
		FileName:   in.FileName,
		FileSize:   in.FileSize,
		FileType:   fileType,
		Status:     StatusUploaded,
		Version:    1,
		UploadedAt: s.now().UTC(),
	}
	if err := s.store.CreateRFP(ctx, doc); err != nil {
		return nil, err
	}
	s.publish("document.uploaded", doc)
	return doc, nil
}

// MarkProcessing flags an uploaded document as picked up by the
// extraction collaborator.
func (s *Service) MarkProcessing(ctx context.Context, id string) (*RFPDocument, error) {
	return s.transition(ctx, id, func(doc *RFPDocument) error {
		if doc.Status != StatusUploaded {
			return fmt.Errorf("%w: cannot process document in status %q", ErrInvalidState, doc.Status)
		}
		doc.Status = StatusProcessing
		return nil
	}, "document.processing")
}

// MarkProcessed stores extracted content and completes the pipeline.
// Already-terminal documents fail with ErrInvalidState; a lost
// compare-and-set race fails with ErrConflict.
func (s *Service) MarkProcessed(ctx context.Context, id, content string) (*RFPDocument, error) {
	return s.transition(ctx, id, func(doc *RFPDocument) error {
		if doc.Status.Terminal() {
			return fmt.Errorf("%w: document already %s", ErrInvalidState, doc.Status)
		}
		now := s.now().UTC()
		doc.Status = StatusProcessed
		doc.Content = content
		doc.FailureReason = ""
		doc.ProcessedAt = &now
		return nil
	}, "document.processed")
}

// MarkFailed records an extraction failure with its reason.
func (s *Service) MarkFailed(ctx context.Context, id, reason string) (*RFPDocument, error) {
	return s.transition(ctx, id, func(doc *RFPDocument) error {
		if doc.Status.Terminal() {
			return fmt.Errorf("%w: document already %s", ErrInvalidState, doc.Status)
		}
		now := s.now().UTC()
		doc.Status = StatusFailed
		doc.FailureReason = reason
		doc.ProcessedAt = &now
		return nil
	}, "document.failed")
}

func (s *Service) transition(ctx context.Context, id string, apply func(*RFPDocument) error, event string) (*RFPDocument, error) {
	doc, err := s.store.FindRFP(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := doc.Version
	if err := apply(doc); err != nil {
		return nil, err
	}
	if err := s.store.UpdateRFP(ctx, doc, expected); err != nil {
		return nil, err
	}
	s.publish(event, doc)
	return doc, nil
}

// GetRFPDocument returns one RFP document by id.
func (s *Service) GetRFPDocument(ctx context.Context, id string) (*RFPDocument, error) {
	return s.store.FindRFP(ctx, id)
}

// ListRFPDocuments returns all RFP documents, newest first.
func (s *Service) ListRFPDocuments(ctx context.Context) ([]*RFPDocument, error) {
	return s.store.ListRFP(ctx)
}

// CreateCompanyInput is the upload metadata for reference material.
type CreateCompanyInput struct {
	Title    string
	FileName string
	FileSize int64
	FileType string
	Category string
	Content  string
}

// CreateCompanyDocument stores immutable reference material. Category
// is validated against the configured allow-list when one is set.
func (s *Service) CreateCompanyDocument(ctx context.Context, in CreateCompanyInput) (*CompanyDocument, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.FileSize <= 0 {
		return nil, fmt.Errorf("%w: file size must be > 0", ErrValidation)
	}
	fileType := strings.ToLower(strings.TrimSpace(in.FileType))
	if _, ok := s.fileTypes[fileType]; !ok {
		return nil, fmt.Errorf("%w: unrecognized file type %q", ErrValidation, in.FileType)
	}
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if len(s.categories) > 0 {
		if _, ok := s.categories[category]; !ok {
			return nil, fmt.Errorf("%w: category %q is not allowed", ErrValidation, in.Category)
		}
	}

	doc := &CompanyDocument{
		ID:         ids.New(),
		Title:      strings.TrimSpace(in.Title),
		FileName:   in.FileName,
		FileSize:   in.FileSize,
		FileType:   fileType,
		Category:   category,
		Content:    in.Content,
		UploadedAt: s.now().UTC(),
	}
	if err := s.store.CreateCompany(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetCompanyDocument returns one company document by id.
func (s *Service) GetCompanyDocument(ctx context.Context, id string) (*CompanyDocument, error) {
	return s.store.FindCompany(ctx, id)
}

// ListCompanyDocuments returns company documents, optionally filtered
// by category.
func (s *Service) ListCompanyDocuments(ctx context.Context, category string) ([]*CompanyDocument, error) {
	return s.store.ListCompany(ctx, strings.ToLower(strings.TrimSpace(category)))
}

func (s *Service) publish(event string, doc *RFPDocument) {
	if s.events == nil {
		return
	}
	s.events.Publish(stream.Event{
		Type:       event,
		ResourceID: doc.ID,
		Status:     string(doc.Status),
		At:         s.now().UTC(),
	})
}
