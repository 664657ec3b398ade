package content

import "context"

// Store describes persistence for templates and the branding record.
// Branding follows an init-on-first-write, update-in-place lifecycle:
// GetBranding returns ErrNotFound until the first SaveBranding.
type Store interface {
	CreateTemplate(ctx context.Context, t *Template) error
	FindTemplate(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context, category string) ([]*Template, error)

	GetBranding(ctx context.Context) (*Branding, error)
	SaveBranding(ctx context.Context, b *Branding) error
}
