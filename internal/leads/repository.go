package leads

import (
	"context"
	"sync"
)

// Store persists accepted leads.
type Store interface {
	Insert(ctx context.Context, lead *Lead) error
}

// Reader looks up stored leads. Not every Store can read back.
type Reader interface {
	GetByID(ctx context.Context, id string) (*Lead, error)
}

// InMemoryStore keeps leads in process memory. It backs tests and local runs
// with LEAD_STORE=memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	order []string
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		leads: make(map[string]*Lead),
	}
}

// Insert stores a copy of lead.
func (s *InMemoryStore) Insert(ctx context.Context, lead *Lead) error {
	if lead == nil {
		return ErrNilLead
	}
	stored := *lead
	stored.SpamSignals = append([]string(nil), lead.SpamSignals...)

	s.mu.Lock()
	if _, exists := s.leads[stored.ID]; !exists {
		s.order = append(s.order, stored.ID)
	}
	s.leads[stored.ID] = &stored
	s.mu.Unlock()
	return nil
}

// GetByID retrieves a lead by ID
func (s *InMemoryStore) GetByID(ctx context.Context, id string) (*Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

// All returns stored leads in insertion order.
func (s *InMemoryStore) All() []*Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Lead, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.leads[id])
	}
	return out
}
