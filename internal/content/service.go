package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rfpdesk.io/internal/ids"
)

// Service mediates template reads and branding updates.
type Service struct {
	store Store
	now   func() time.Time
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

// NewService constructs a Service.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTemplate registers a reusable content block.
func (s *Service) CreateTemplate(ctx context.Context, name, description, body, category string) (*Template, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}
	t := &Template{
		ID:          ids.New(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Content:     body,
		Category:    strings.ToLower(strings.TrimSpace(category)),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTemplate returns one template by id.
func (s *Service) GetTemplate(ctx context.Context, id string) (*Template, error) {
	return s.store.FindTemplate(ctx, id)
}

// ListTemplates returns templates, optionally filtered by category.
func (s *Service) ListTemplates(ctx context.Context, category string) ([]*Template, error) {
	return s.store.ListTemplates(ctx, strings.ToLower(strings.TrimSpace(category)))
}

// BrandingInput carries a full branding update. Zero-value color and
// font fields fall back to the defaults.
type BrandingInput struct {
	LogoURL          string
	CompanyName      string
	PrimaryColor     string
	SecondaryColor   string
	FontFamily       string
	PresentationURL  string
	PresentationName string
	PresentationSize int64
}

// GetBranding returns the current branding configuration.
func (s *Service) GetBranding(ctx context.Context) (*Branding, error) {
	return s.store.GetBranding(ctx)
}

// UpdateBranding initializes or replaces the branding record.
// Last-writer-wins: the store serializes concurrent saves and keeps no
// history.
func (s *Service) UpdateBranding(ctx context.Context, in BrandingInput) (*Branding, error) {
	if strings.TrimSpace(in.CompanyName) == "" {
		return nil, fmt.Errorf("%w: company name is required", ErrValidation)
	}
	b := &Branding{
		LogoURL:          in.LogoURL,
		CompanyName:      strings.TrimSpace(in.CompanyName),
		PrimaryColor:     defaultIfEmpty(in.PrimaryColor, DefaultPrimaryColor),
		SecondaryColor:   defaultIfEmpty(in.SecondaryColor, DefaultSecondaryColor),
		FontFamily:       defaultIfEmpty(in.FontFamily, DefaultFontFamily),
		PresentationURL:  in.PresentationURL,
		PresentationName: in.PresentationName,
		PresentationSize: in.PresentationSize,
		UpdatedAt:        s.now().UTC(),
	}
	if err := s.store.SaveBranding(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func defaultIfEmpty(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
