package content

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety.
type InMemory struct {
	mu        sync.RWMutex
	templates map[string]*Template
	branding  *Branding
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty content store.
func NewInMemory() *InMemory {
	return &InMemory{templates: make(map[string]*Template)}
}

func (s *InMemory) CreateTemplate(ctx context.Context, t *Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.templates[t.ID] = &cp
	return nil
}

func (s *InMemory) FindTemplate(ctx context.Context, id string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemory) ListTemplates(ctx context.Context, category string) ([]*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Template, 0, len(s.templates))
	for _, t := range s.templates {
		if category != "" && t.Category != category {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) GetBranding(ctx context.Context) (*Branding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.branding == nil {
		return nil, ErrNotFound
	}
	cp := *s.branding
	return &cp, nil
}

func (s *InMemory) SaveBranding(ctx context.Context, b *Branding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.branding = &cp
	return nil
}
