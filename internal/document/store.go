package document

import "context"

// Store describes persistence operations required by the document
// subsystem. UpdateRFP is a compare-and-set: the write succeeds only
// when the stored version still equals expectedVersion, and bumps the
// record to expectedVersion+1. A mismatch returns ErrConflict so the
// caller can retry from a fresh read.
type Store interface {
	CreateRFP(ctx context.Context, doc *RFPDocument) error
	FindRFP(ctx context.Context, id string) (*RFPDocument, error)
	ListRFP(ctx context.Context) ([]*RFPDocument, error)
	UpdateRFP(ctx context.Context, doc *RFPDocument, expectedVersion int64) error

	CreateCompany(ctx context.Context, doc *CompanyDocument) error
	FindCompany(ctx context.Context, id string) (*CompanyDocument, error)
	ListCompany(ctx context.Context, category string) ([]*CompanyDocument, error)
}
