package response

import "context"

// Store describes persistence operations required by the response
// subsystem. Update is a compare-and-set: the write succeeds only when
// the stored version still equals expectedVersion, and bumps the
// record to expectedVersion+1. A mismatch returns ErrConflict so the
// caller can retry from a fresh read. Every multi-field mutation lands
// in one Update call; there are no partial writes.
type Store interface {
	Create(ctx context.Context, r *Response) error
	Find(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context) ([]*Response, error)
	ListByDocument(ctx context.Context, rfpDocumentID string) ([]*Response, error)
	Update(ctx context.Context, r *Response, expectedVersion int64) error
}
