package document

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety.
// Backs unit tests and local runs; production uses PGStore.
type InMemory struct {
	mu      sync.RWMutex
	rfps    map[string]*RFPDocument
	company map[string]*CompanyDocument
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty document store.
func NewInMemory() *InMemory {
	return &InMemory{
		rfps:    make(map[string]*RFPDocument),
		company: make(map[string]*CompanyDocument),
	}
}

func (s *InMemory) CreateRFP(ctx context.Context, doc *RFPDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *doc
	s.rfps[doc.ID] = &cp
	return nil
}

func (s *InMemory) FindRFP(ctx context.Context, id string) (*RFPDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.rfps[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *InMemory) ListRFP(ctx context.Context) ([]*RFPDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*RFPDocument, 0, len(s.rfps))
	for _, doc := range s.rfps {
		cp := *doc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (s *InMemory) UpdateRFP(ctx context.Context, doc *RFPDocument, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rfps[doc.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrConflict
	}
	doc.Version = expectedVersion + 1
	cp := *doc
	s.rfps[doc.ID] = &cp
	return nil
}

func (s *InMemory) CreateCompany(ctx context.Context, doc *CompanyDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *doc
	s.company[doc.ID] = &cp
	return nil
}

func (s *InMemory) FindCompany(ctx context.Context, id string) (*CompanyDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.company[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *InMemory) ListCompany(ctx context.Context, category string) ([]*CompanyDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*CompanyDocument, 0, len(s.company))
	for _, doc := range s.company {
		if category != "" && doc.Category != category {
			continue
		}
		cp := *doc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}
