package response

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety.
// Backs unit tests and local runs; production uses PGStore.
type InMemory struct {
	mu        sync.RWMutex
	responses map[string]*Response
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty response store.
func NewInMemory() *InMemory {
	return &InMemory{responses: make(map[string]*Response)}
}

func (s *InMemory) Create(ctx context.Context, r *Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := clone(r)
	s.responses[r.ID] = cp
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (*Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.responses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

func (s *InMemory) List(ctx context.Context) ([]*Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Response, 0, len(s.responses))
	for _, r := range s.responses {
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) ListByDocument(ctx context.Context, rfpDocumentID string) ([]*Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Response
	for _, r := range s.responses {
		if r.RFPDocumentID == rfpDocumentID {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, r *Response, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.responses[r.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrConflict
	}
	r.Version = expectedVersion + 1
	s.responses[r.ID] = clone(r)
	return nil
}

func clone(r *Response) *Response {
	cp := *r
	cp.ConsultantTypes = append(cp.ConsultantTypes[:0:0], r.ConsultantTypes...)
	cp.AdditionalCosts = append(cp.AdditionalCosts[:0:0], r.AdditionalCosts...)
	return &cp
}
